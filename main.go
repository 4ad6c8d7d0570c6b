package main

import "github.com/giygas/druglabel-checker/cmd"

func main() {
	cmd.Execute()
}
