package main

import "github.com/AyushMishra1006/endee-code-assistant/cmd"

func main() {
	cmd.Execute()
}
