package main

import "github.com/evolution-x/site-metadata/cmd/update-maintainers/cmd"

func main() {
	cmd.Execute()
}
