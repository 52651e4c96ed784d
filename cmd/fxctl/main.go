package main

import "github.com/mcoot/fxdesk/internal/cli"

func main() {
	cli.Execute()
}
