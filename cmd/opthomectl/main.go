package main

import "github.com/gmcavallazzi/opthome/cmd/opthomectl/cmd"

func main() {
	cmd.Execute()
}
