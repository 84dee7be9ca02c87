package main

import "github.com/edvall/cascade/cascade/cmd"

func main() {
	cmd.Execute()
}
