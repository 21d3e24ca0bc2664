package main

import "tidemark/cmd/client/cmd"

func main() {
	cmd.Execute()
}
