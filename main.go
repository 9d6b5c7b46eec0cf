package main

import "github.com/memora-app/memora/cmd"

func main() {
	cmd.Execute()
}
