package main

import "health-portal/internal/cli"

func main() {
	cli.Execute()
}
