package main

import "github.com/iliyamo/konbase/internal/cli"

func main() {
	cli.Execute()
}
