package main

import "embedder/cmd"

func main() {
	cmd.Execute()
}
