package main

import "github.com/ridoystarlord/relgraph/cmd"

func main() {
	cmd.Execute()
}
