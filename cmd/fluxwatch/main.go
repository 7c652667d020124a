// ABOUTME: CLI entrypoint for the fluxwatch dashboard client with watch, run, compare, and serve modes.
// ABOUTME: Wires together the connection manager, state store, REST client, cache, and terminal UI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/signalflux/fluxwatch/api"
	"github.com/signalflux/fluxwatch/cache"
	"github.com/signalflux/fluxwatch/chartview"
	"github.com/signalflux/fluxwatch/compare"
	"github.com/signalflux/fluxwatch/conn"
	"github.com/signalflux/fluxwatch/snapshot"
	"github.com/signalflux/fluxwatch/store"
	"github.com/signalflux/fluxwatch/tui"
)

var version = "dev"

// cliConfig holds all CLI configuration parsed from flags and positional arguments.
type cliConfig struct {
	headless    bool
	runQuery    string
	compareRun  string
	serveFile   string
	addr        string
	snapshotOut string
	showVersion bool
}

func main() {
	loadDotEnv(".env")

	cfg := parseFlags()

	if cfg.showVersion {
		fmt.Printf("fluxwatch %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(cfg))
}

// parseFlags parses command-line flags and returns a populated config.
func parseFlags() cliConfig {
	var cfg cliConfig

	fs := flag.NewFlagSet("fluxwatch", flag.ContinueOnError)
	fs.BoolVar(&cfg.headless, "headless", false, "Watch without the terminal UI, logging run events")
	fs.StringVar(&cfg.runQuery, "run", "", "Start an analysis run with the given query and stream it")
	fs.StringVar(&cfg.compareRun, "compare", "", "Fetch a run and its parent and print the comparison")
	fs.StringVar(&cfg.serveFile, "serve", "", "Serve a saved snapshot file over HTTP")
	fs.StringVar(&cfg.addr, "addr", "127.0.0.1:8900", "Listen address for -serve")
	fs.StringVar(&cfg.snapshotOut, "snapshot", "", "Write a snapshot of the run to this path when it finishes")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printHelp(os.Stderr, version)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	return cfg
}

// run dispatches to the appropriate mode. Returns an exit code.
func run(cfg cliConfig) int {
	// Serve mode needs no server connection at all.
	if cfg.serveFile != "" {
		return runServe(cfg)
	}

	env, err := configFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	var prof *profile
	if env.Profile != "" {
		prof, err = loadProfile(defaultProfilesPath(), env.Profile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		applyProfile(env, prof)
	}

	if cfg.compareRun != "" {
		return runCompare(cfg, env)
	}
	return runWatch(cfg, env, prof)
}

// runWatch connects to the server and streams run state, optionally starting
// a run first.
func runWatch(cfg cliConfig, env *clientConfig, prof *profile) int {
	st := store.New()
	mgr := conn.NewManager(env.ServerURL, st, conn.WithToken(env.Token))
	defer mgr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mgr.Connect(ctx); err != nil {
		// The manager keeps retrying on its own; surface the first failure.
		log.Printf("fluxwatch: initial connect failed, retrying: %v", err)
	}

	// Mirror the history listing into the local cache as it arrives.
	if c, err := cache.Open(env.CachePath); err != nil {
		log.Printf("fluxwatch: cache unavailable: %v", err)
	} else {
		defer c.Close()
		go mirrorHistory(ctx, st, c)
	}

	if cfg.runQuery != "" {
		client := api.NewClient(env.APIURL, env.Token)
		req := runRequestFromProfile(prof)
		req.Query = cfg.runQuery
		started, err := client.StartRun(ctx, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: start run: %v\n", err)
			return 1
		}
		st.BeginRun(started.RunID, started.Query)
		log.Printf("fluxwatch: started run_id=%s", started.RunID)
	}

	var code int
	if cfg.headless {
		code = watchHeadless(ctx, st, cfg.runQuery != "")
	} else {
		opts := []tui.Option{tui.WithConnectNote("connected to " + env.ServerURL)}
		if cfg.runQuery != "" {
			opts = append(opts, tui.WithExitOnDone())
		}
		if err := tui.Run(st, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}
	if code != 0 {
		return code
	}

	if cfg.snapshotOut != "" {
		doc := snapshot.FromStore(st)
		if err := snapshot.Save(cfg.snapshotOut, doc); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		log.Printf("fluxwatch: snapshot saved path=%s signals=%d", cfg.snapshotOut, doc.Count)
	}
	return 0
}

// mirrorHistory copies each history replacement into the cache so compare
// and offline views work across restarts.
func mirrorHistory(ctx context.Context, st *store.Store, c *cache.RunCache) {
	updates := st.Subscribe()
	defer st.Unsubscribe(updates)

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if u.Kind != store.UpdateHistory {
				continue
			}
			if err := c.ReplaceHistory(st.History()); err != nil {
				log.Printf("fluxwatch: mirror history: %v", err)
			}
		}
	}
}

// watchHeadless logs run transitions until interrupted or, when a run was
// started, until it reaches a terminal status.
func watchHeadless(ctx context.Context, st *store.Store, exitOnDone bool) int {
	updates := st.Subscribe()
	defer st.Unsubscribe(updates)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
			return 0
		case <-ctx.Done():
			return 0
		case u, ok := <-updates:
			if !ok {
				return 0
			}
			switch u.Kind {
			case store.UpdateRun:
				run := st.Run()
				log.Printf("fluxwatch: run_id=%s status=%s", run.RunID, run.Status)
				if exitOnDone && run.Status.Terminal() {
					if run.Status != "completed" {
						return 1
					}
					return 0
				}
			case store.UpdateProgress:
				phase, progress := st.Phase()
				log.Printf("fluxwatch: phase=%s progress=%d%%", phase, progress)
			case store.UpdateSignal:
				log.Printf("fluxwatch: signals=%d", len(st.Signals()))
			case store.UpdateNotice:
				for _, n := range st.Notices() {
					log.Printf("fluxwatch: run %s finished with %d signals", n.RunID, n.SignalCount)
				}
			}
		}
	}
}

// runCompare resolves a run against its parent and prints the diff summary.
func runCompare(cfg cliConfig, env *clientConfig) int {
	ctx := context.Background()
	client := api.NewClient(env.APIURL, env.Token)

	var runCache compare.RunCache
	if c, err := cache.Open(env.CachePath); err != nil {
		log.Printf("fluxwatch: cache unavailable: %v", err)
	} else {
		defer c.Close()
		runCache = c
	}

	resolver := compare.NewResolver(client, runCache)
	result, err := resolver.Resolve(ctx, cfg.compareRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	child := result.Child.Run
	fmt.Printf("run %s  status=%s  signals=%d\n", child.RunID, child.Status, len(result.Child.Signals))

	if !result.Comparable {
		if child.ParentRunID == "" {
			fmt.Println("no parent run declared; nothing to compare")
		} else {
			fmt.Printf("parent run %s unavailable; comparison disabled\n", child.ParentRunID)
		}
		return 0
	}

	diff := compare.ComputeDiff(result)
	fmt.Printf("vs parent %s:\n", result.Parent.Run.RunID)
	fmt.Printf("  signals: +%d added, -%d removed, %d unchanged\n",
		len(diff.AddedSignals), len(diff.RemovedSignals), len(diff.CommonSignals))
	fmt.Printf("  charts: %d shared, %d child-only, %d parent-only\n",
		len(diff.SharedTickers), len(diff.ChildTickers), len(diff.ParentTickers))
	for _, sig := range diff.AddedSignals {
		fmt.Printf("  + %s (confidence %.2f)\n", sig.Title, sig.Confidence)
	}
	for _, sig := range diff.RemovedSignals {
		fmt.Printf("  - %s\n", sig.Title)
	}
	return 0
}

// runServe loads a snapshot file and serves the standalone chart view.
func runServe(cfg cliConfig) int {
	doc, err := snapshot.Load(cfg.serveFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	srv := chartview.NewServer(doc, chartview.Config{Token: os.Getenv("FLUXWATCH_TOKEN")})
	if err := srv.ListenAndServe(cfg.addr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
