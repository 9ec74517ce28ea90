package main

import "github.com/luki/sensordash/internal/cli"

func main() {
	cli.Execute()
}
