// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the simsensor configuration file.
//
// The file is named either by the SIMSENSOR_CONFIG environment variable
// ([Load]) or by a --config flag ([LoadFile]). There is no search path
// and no environment override of individual values. YAML files are
// parsed with yaml.v3; .json and .jsonc files may carry comments and
// trailing commas, which are stripped before decoding.
//
// [Config.Validate] checks structure only. Whether a publisher's
// frequency can be served by the simulator's tick rate is decided by
// the publisher itself when it initializes.
package config
