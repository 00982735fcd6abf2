package main

import "hawkdrive/cmd"

func main() {
	cmd.Execute()
}
