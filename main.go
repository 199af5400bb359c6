package main

import "github.com/agentic-research/roleroute/cmd"

func main() {
	cmd.Execute()
}
