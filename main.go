package main

import "github.com/keyline-tools/keyline/cmd"

func main() {
	cmd.Execute()
}
