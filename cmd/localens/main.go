package main

import "github.com/anime-shed/localens-go/internal/cli"

func main() {
	cli.Execute()
}
