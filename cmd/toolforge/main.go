package main

import "github.com/toolforge/toolforge/cmd"

func main() {
	cmd.Execute()
}
