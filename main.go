package main

import (
	"github.com/hansai/wa-bridge/cmd"
)

func main() {
	cmd.Execute()
}
