package main

import "github.com/mj1618/dump-hierarchy/cmd"

func main() {
	cmd.Execute()
}
