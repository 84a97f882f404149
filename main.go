package main

import "github.com/shopsage/shopsage/cmd"

func main() {
	cmd.Execute()
}
