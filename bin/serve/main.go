package main

import (
	"fmt"
	"os"

	"art-showcase/cmd"
)

// serve is a shortcut for "art-showcase serve" used by container images
func main() {
	rootCmd := cmd.NewRootCmd()
	rootCmd.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
