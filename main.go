package main

import "clashctl/internal/cli"

func main() {
	cli.Execute()
}
