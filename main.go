package main

import "github.com/Alturino/marketplace/cmd"

func main() {
	cmd.Start()
}
