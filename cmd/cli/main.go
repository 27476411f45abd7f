package main

import (
	"fmt"
	"os"

	"github.com/dd-tools/databook/pkg/runtime/terminal"
	"github.com/dd-tools/databook/pkg/services/config"
)

func main() {
	settings, err := config.Load(os.Getenv("DATABOOK_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli := terminal.NewCLI(terminal.Options{
		Settings: settings,
		Output:   os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
