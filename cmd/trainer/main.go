// FILE: lixenwraith/fragment/cmd/trainer/main.go
package main

import (
	"fmt"
	"os"
)

func main() {
	root, err := newRootCommand(os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "trainer:", err)
		os.Exit(1)
	}
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
