package main

import (
	"fmt"
	"os"

	"github.com/deepnoodle-ai/mirror/errz"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatal(err)
	}
}

// fatal prints err in red and exits. Structured errors get their kind code
// as a prefix.
func fatal(err error) {
	msg := err.Error()
	if kind := errz.KindOf(err); kind != 0 {
		msg = kind.Code() + " " + msg
	}
	fmt.Fprintln(os.Stderr, red(msg))
	os.Exit(1)
}
