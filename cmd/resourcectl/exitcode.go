package main

import "resourcehub/internal/rerr"

// exitCodeFor maps an error to the process exit code spec.md §6 assigns
// to each tagged error; an error that isn't one of ours (e.g. cobra's own
// usage errors) exits 1.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if e, ok := err.(*rerr.Error); ok {
		return e.ExitCode()
	}
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 1
		}
		err = u.Unwrap()
		if e, ok := err.(*rerr.Error); ok {
			return e.ExitCode()
		}
		if err == nil {
			return 1
		}
	}
}
