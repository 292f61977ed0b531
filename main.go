package main

import "github.com/KaramelBytes/syntree-cli/cmd"

func main() {
	cmd.Execute()
}
