package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/consensus/app/services/sim/handlers"
	"github.com/ardanlabs/consensus/foundation/consensus/archive"
	"github.com/ardanlabs/consensus/foundation/consensus/archive/badgerdb"
	"github.com/ardanlabs/consensus/foundation/consensus/archive/disk"
	"github.com/ardanlabs/consensus/foundation/consensus/archive/memory"
	"github.com/ardanlabs/consensus/foundation/consensus/block"
	"github.com/ardanlabs/consensus/foundation/consensus/node"
	"github.com/ardanlabs/consensus/foundation/consensus/selector"
	"github.com/ardanlabs/consensus/foundation/consensus/state"
	"github.com/ardanlabs/consensus/foundation/consensus/worker"
	"github.com/ardanlabs/consensus/foundation/events"
	"github.com/ardanlabs/consensus/foundation/logger"
	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("SIM")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		Sim struct {
			NodeCount      int           `conf:"default:5"`
			Rounds         int           `conf:"default:5"`
			RoundInterval  time.Duration `conf:"default:1s"`
			SelectStrategy string        `conf:"default:uniform"`
			Seed           int64         `conf:"default:0"`
		}
		Archive struct {
			Backend string `conf:"default:disk"`
			Path    string `conf:"default:zblock/rounds"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "SIM"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	fmt.Println(`  ____   ___    _   _  ____   _____  _   _  ____   _   _  ____  `)
	fmt.Println(` / ___| / _ \ | \ | |/ ___| | ____|| \ | |/ ___| | | | |/ ___| `)
	fmt.Println(`| |    | | | ||  \| |\___ \ |  _|  |  \| |\___ \ | | | |\___ \ `)
	fmt.Println(`| |___ | |_| || |\  | ___) || |___ | |\  | ___) || |_| | ___) |`)
	fmt.Println(` \____| \___/ |_| \_||____/ |_____||_| \_||____/  \___/ |____/ `)
	fmt.Print("\n")

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Archive Support

	// The archive keeps a record of every node's state at the end of every
	// round so tooling can inspect a run after the fact.
	var strg archive.Storage
	switch cfg.Archive.Backend {
	case "disk":
		strg, err = disk.New(cfg.Archive.Path)
	case "memory":
		strg, err = memory.New()
	case "badger":
		strg, err = badgerdb.New(cfg.Archive.Path)
	default:
		return fmt.Errorf("archive backend %q does not exist", cfg.Archive.Backend)
	}
	if err != nil {
		return fmt.Errorf("unable to open round archive: %w", err)
	}

	// =========================================================================
	// Simulation Support

	// A single seeded source serves both candidate selection and block
	// identifiers, which makes any run repeatable from its seed. A zero
	// seed asks for a clock based one, so log what was actually used.
	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Infow("startup", "status", "randomness", "seed", seed, "strategy", cfg.Sim.SelectStrategy)

	rnd := rand.New(rand.NewSource(seed))

	pick, err := selector.Retrieve(cfg.Sim.SelectStrategy)
	if err != nil {
		return fmt.Errorf("unable to load selection strategy: %w", err)
	}

	// Every node shares the one generator so all block identifiers come
	// from the one seeded source.
	gen := block.NewGenerator(rnd)
	nodes := make([]*node.Node, cfg.Sim.NodeCount)
	for i := range nodes {
		nodes[i] = node.New(i, gen)
	}

	// The consensus packages accept a function of this signature to allow
	// the application to log.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
	}

	// The state value represents the simulated network and manages the
	// nodes, the round engine, and the archive, and provides an API for
	// application support.
	state, err := state.New(state.Config{
		Nodes:     nodes,
		Rounds:    cfg.Sim.Rounds,
		Selector:  pick,
		Rand:      rnd,
		Archive:   strg,
		EvHandler: ev,
	})
	if err != nil {
		return err
	}
	defer state.Shutdown()

	// The worker package implements the background round running workflow.
	// The worker will register itself with the state.
	worker.Run(state, evts, cfg.Sim.RoundInterval, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    state,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
