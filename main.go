package main

import "github.com/sketchpair/sketchpair/cmd"

func main() {
	cmd.Execute()
}
