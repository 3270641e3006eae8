package main

import "github.com/alexiusacademia/gotriple/cmd"

func main() {
	cmd.Execute()
}
