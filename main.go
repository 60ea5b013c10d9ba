package main

import "github.com/rzshell/rz/cmd"

func main() {
	cmd.Execute()
}
