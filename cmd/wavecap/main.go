package main

import "github.com/mfranzen/wavecap/internal/cli"

func main() {
	cli.Execute()
}
