// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the entrypoint error handler shared by the
// lottery binaries. Each main is
//
//	func main() {
//	    if err := run(); err != nil {
//	        process.Fatal(err)
//	    }
//	}
//
// so configuration and startup failures reach stderr even when the
// structured logger was never built.
package process
