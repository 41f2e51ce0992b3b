// cmd/looksee/main.go
//
// Entry point for the looksee CLI. `looksee scan <target>` walks a dotted
// package path under the configured search roots, interprets every module it
// finds and reports the exported objects that match the filters.

package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}
