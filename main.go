// gpgbridge relays agent-protocol traffic from stdin/stdout to a Windows
// host's Pageant window or gpg-agent socket emulation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gpgbridge/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "gpgbridge: %v\n", err)
		os.Exit(1)
	}
}
