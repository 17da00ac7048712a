package main

import "github.com/getsavvyinc/nbcomplete/cmd"

func main() {
	cmd.Execute()
}
