package main

import (
	"os"

	"github.com/LambdaTest/forkplan/cmd"
)

func main() {
	if err := cmd.RootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
