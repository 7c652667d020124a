// ABOUTME: Help display for the fluxwatch CLI with grouped flags, examples, and environment status.
// ABOUTME: Provides printHelp for usage output including connection environment variables.
package main

import (
	"fmt"
	"io"
	"os"
)

// printHelp writes a formatted help message to w, including usage patterns,
// grouped flags, examples, and environment status.
func printHelp(w io.Writer, ver string) {
	fmt.Fprintf(w, "fluxwatch %s — live terminal client for the signal analysis dashboard\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  fluxwatch                           Watch the server's foreground run")
	fmt.Fprintln(w, "  fluxwatch -run \"query\"              Start a run and stream it to completion")
	fmt.Fprintln(w, "  fluxwatch -compare <run-id>         Compare a run against its parent")
	fmt.Fprintln(w, "  fluxwatch -serve snapshot.json      Serve a saved snapshot over HTTP")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Watch Flags:")
	fmt.Fprintln(w, "  -headless             Log run events instead of the terminal UI")
	fmt.Fprintln(w, "  -snapshot <path>      Write a snapshot of the run when the UI exits")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Serve Flags:")
	fmt.Fprintln(w, "  -addr <host:port>     Listen address (default: 127.0.0.1:8900)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  FLUXWATCH_SERVER_URL  WebSocket endpoint (default: ws://127.0.0.1:8000/ws)")
	fmt.Fprintln(w, "  FLUXWATCH_API_URL     REST base URL (default: derived from server URL)")
	fmt.Fprintln(w, "  FLUXWATCH_TOKEN       Bearer token; required for non-loopback servers")
	fmt.Fprintln(w, "  FLUXWATCH_DB          Run cache path (default: ~/.fluxwatch/cache.db)")
	fmt.Fprintln(w, "  FLUXWATCH_PROFILE     Named profile from ~/.fluxwatch/profiles.yaml")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  fluxwatch -run \"tariff impact on semiconductor supply chains\"")
	fmt.Fprintln(w, "  fluxwatch -run \"rate cut odds\" -snapshot out/run.json")
	fmt.Fprintln(w, "  fluxwatch -serve out/run.json -addr 0.0.0.0:8900")
	fmt.Fprintln(w)

	if os.Getenv("FLUXWATCH_TOKEN") == "" {
		fmt.Fprintln(w, "Status: FLUXWATCH_TOKEN not set (loopback connections only)")
	} else {
		fmt.Fprintln(w, "Status: FLUXWATCH_TOKEN set")
	}
}
