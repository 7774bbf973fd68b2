package main

import (
	"fmt"
	"os"

	"ledger/internal/ctl"
)

func main() {
	if err := ctl.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
