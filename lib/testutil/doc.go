// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests waiting on executor workers or stepper goroutines
// never hang. They are the only place tests touch the wall clock.
package testutil
