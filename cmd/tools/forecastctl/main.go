// Command forecastctl runs forecasts from CSV histories, submits jobs to
// forecast workers and lists the workers registered in etcd.
package main

import (
	"fmt"
	"os"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
