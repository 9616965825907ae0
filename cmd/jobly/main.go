// Command jobly manages companies and jobs from the command line.
//
//	jobly migrate up
//	jobly companies create --data '{"handle":"acme","name":"Acme","description":"Rockets"}'
//	jobly jobs list --filter minSalary=50000 --filter hasEquity=true
//
// Settings come from ./jobly.yaml, .env and JOBLY_* environment variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdout, os.Stderr)
	defer a.close()

	return a.rootCommand().ExecuteContext(ctx)
}
