package main

import "meli-trends/cmd"

func main() {
	cmd.Execute()
}
