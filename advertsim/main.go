// Package main is the entry point of the advertsim command.
package main

import "github.com/sarchlab/advertise/advertsim/cmd"

func main() {
	cmd.Execute()
}
