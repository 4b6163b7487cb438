package main

import "github.com/MeKo-Tech/sheetscan/cmd/sheetscan/cmd"

func main() {
	cmd.Execute()
}
