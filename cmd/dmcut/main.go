package main

import "github.com/forPelevin/dmcut/internal/cli"

func main() {
	cli.Main()
}
