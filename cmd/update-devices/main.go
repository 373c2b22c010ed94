package main

import "github.com/evolution-x/site-metadata/cmd/update-devices/cmd"

func main() {
	cmd.Execute()
}
