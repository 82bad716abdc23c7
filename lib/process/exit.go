// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrUsage marks command line errors. Fatal exits with status 2 for
// them, matching pflag's own convention.
var ErrUsage = errors.New("usage error")

// Fatal writes "error: err" to stderr and exits: status 2 for usage
// errors, 1 otherwise.
func Fatal(err error) {
	os.Exit(report(os.Stderr, err))
}

// report writes err to w and returns the exit status for it.
func report(w io.Writer, err error) int {
	fmt.Fprintf(w, "error: %v\n", err)
	if errors.Is(err, ErrUsage) {
		return 2
	}
	return 1
}
