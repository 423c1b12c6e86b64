package main

import "github.com/CaioAP/scuderia/internal/cli"

func main() {
	cli.Execute()
}
