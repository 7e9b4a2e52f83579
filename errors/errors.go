// Package errors provides error constructors that record the file and line
// of the call site, so failures surfaced over JSON-RPC or written to the
// trace file can be traced back to their origin without stack dumps.
package errors

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Wrapf adds context (including file and line) to an existing error.
// If the provided error is nil, Wrapf returns nil.
func Wrapf(err error, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("[%s] %s: %w", caller(), fmt.Sprintf(format, a...), err)
}

func caller() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "???:0"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
