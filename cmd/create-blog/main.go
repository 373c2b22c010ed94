package main

import "github.com/evolution-x/site-metadata/cmd/create-blog/cmd"

func main() {
	cmd.Execute()
}
