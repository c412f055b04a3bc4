package vplanet

import (
	"bufio"
	"io"
)

// newLineScanner builds a bufio.Scanner over r with the default line
// split function, matching config.go's bufio.Scanner(file) use for its
// CSV ephemeris fallback loader. Broken out as its own constructor so
// tests can scan an in-memory string without touching the filesystem.
func newLineScanner(r io.Reader) *bufio.Scanner {
	return bufio.NewScanner(r)
}

// ApplyOptions dispatches every module attached to sys against a body's
// parsed option map: each module's ReadOptions gets the full map (the
// source lets every module inspect every option; the owning module
// consumes the ones it recognizes and leaves the rest). Any option left
// unclaimed by every module is an InputError, enforcing spec.md §7's
// "unrecognized option is fatal" rule.
func ApplyOptions(sys *System, b *Body, opts map[string]string, file string) error {
	claimed := make(map[string]bool, len(opts))
	remaining := make(map[string]string, len(opts))
	for k, v := range opts {
		remaining[k] = v
	}

	for _, m := range sys.Modules {
		before := len(remaining)
		if err := m.ReadOptions(b, remaining); err != nil {
			return err
		}
		// Modules are expected to delete keys they consume from the map
		// they're handed; ReadOptions implementations receive `remaining`
		// by reference and mutate it directly.
		_ = before
	}
	for k := range opts {
		if _, ok := remaining[k]; !ok {
			claimed[k] = true
		}
	}
	for k := range remaining {
		if !claimed[k] {
			return &InputError{File: file, Option: k, Reason: "unrecognized option"}
		}
	}
	return nil
}
