package main

import "cbcrag/internal/cli"

func main() {
	cli.Execute()
}
