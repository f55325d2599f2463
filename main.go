package main

import (
	"sono/cmd"
)

func main() {
	cmd.Execute()
}
