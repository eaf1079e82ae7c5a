// Package main implements the trackbot binary: a chat bot that finds and
// delivers audio tracks, working through each user's requests one at a time.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
