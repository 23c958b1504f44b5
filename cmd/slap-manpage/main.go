package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/slapcli/slap/cmd/slap"
	"github.com/slapcli/slap/internal/version"
)

func main() {
	rootCmd := slap.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "SLAP",
		Section: "1",
		Source:  "slap " + version.Version,
		Manual:  "slap manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
