package main

import "github.com/LeJamon/goProgramsd/internal/cli"

func main() {
	cli.Execute()
}
