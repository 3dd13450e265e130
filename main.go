package main

import "vtrim/cmd"

func main() {
	cmd.Execute()
}
