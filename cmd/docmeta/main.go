package main

import "github.com/joseph-ayodele/docmeta/internal/cli"

func main() {
	cli.Execute()
}
