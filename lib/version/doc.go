// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the simsensor binary.
// Values are injected with -ldflags at build time.
package version
