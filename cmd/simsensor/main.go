// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/simsensor/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	return root().Execute(args)
}

func root() *command {
	var showVersion bool
	return &command{
		Name:        "simsensor",
		Description: "Publish joint sensor readings from a fixed-step simulation.",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("simsensor", pflag.ContinueOnError)
			flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
			return flagSet
		},
		Subcommands: []*command{runCommand(), inspectCommand()},
		Run: func(args []string) error {
			if showVersion {
				version.Print("simsensor")
				return nil
			}
			return errors.New("subcommand required (run 'simsensor --help' for usage)")
		},
	}
}
