package main

import "github.com/pfrederiksen/ticket-tracker/internal/cli"

func main() {
	cli.Execute()
}
