package main

import "github.com/timvw/panectl/cmd"

func main() {
	cmd.Execute()
}
