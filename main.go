package main

import "github.com/agentic-research/treeport/cmd"

func main() {
	cmd.Execute()
}
