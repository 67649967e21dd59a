// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/simsensor/lib/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	GitCommit = "unknown"
	BuildTime = "unknown"
	Version   = "0.1.0-dev"
)

// Info returns the one-line version string printed by --version.
func Info() string {
	return fmt.Sprintf("%s (%s, %s, %s/%s)", Version, GitCommit, BuildTime, runtime.GOOS, runtime.GOARCH)
}

// Print writes "<binary> <Info()>" to stdout.
func Print(binary string) {
	fmt.Printf("%s %s\n", binary, Info())
}
