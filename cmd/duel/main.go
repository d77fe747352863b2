package main

import "github.com/mcoot/symbolduel/internal/cli"

func main() {
	cli.Execute()
}
