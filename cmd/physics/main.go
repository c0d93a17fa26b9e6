package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/zeusync/physics2d/internal/config"
	"github.com/zeusync/physics2d/internal/core/observability/log"
	"github.com/zeusync/physics2d/internal/core/systems/physics/scene"
	"github.com/zeusync/physics2d/internal/injector"
)

type options struct {
	configPath string
	serve      bool
	addr       string
	ticks      int
	parallel   int
	logLevel   string
	debug      bool
}

func parseFlags() (options, []string) {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML config file (defaults apply when empty)")
	flag.BoolVar(&opts.serve, "serve", false, "run the first scene live and stream it over websocket")
	flag.StringVar(&opts.addr, "addr", "", "listen address in serve mode (overrides config)")
	flag.IntVar(&opts.ticks, "ticks", 0, "ticks per headless run (0 = scene value, else 600)")
	flag.IntVar(&opts.parallel, "parallel", runtime.NumCPU(), "scenes simulated at once in headless mode")
	flag.StringVar(&opts.logLevel, "log", "", "log level (overrides config)")
	flag.BoolVar(&opts.debug, "debug", false, "validate the broad-phase tree every tick")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] SCENE...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Runs YAML or JSON scenes headless, or serves one live.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -ticks 1200 scenes/*.yaml\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -serve -addr :8080 scenes/pile.yaml\n", os.Args[0])
	}
	flag.Parse()
	return opts, flag.Args()
}

func loadConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(opts.configPath); err != nil {
			return config.Config{}, err
		}
	}
	if opts.logLevel != "" {
		level, err := log.ParseLevel(opts.logLevel)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Log.Level = level
	}
	if opts.addr != "" {
		cfg.Server.ListenAddr = opts.addr
	}
	if opts.debug {
		cfg.Physics.Debug = true
	}
	return cfg, cfg.Validate()
}

func main() {
	opts, scenes := parseFlags()
	if len(scenes) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if opts.serve {
		err = serve(ctx, cfg, scenes[0])
	} else {
		err = runBatch(ctx, cfg, scenes, opts.ticks, opts.parallel, os.Stdout)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg config.Config, path string) error {
	s, err := scene.LoadFile(path)
	if err != nil {
		return err
	}
	cfg.Physics = s.Configure(cfg.Physics)

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer app.Server.Close()

	bodies, err := s.Populate(app.World)
	if err != nil {
		return err
	}
	app.Logger.Info("Scene loaded", log.String("scene", s.Name), log.Int("bodies", len(bodies)))

	if err = app.Server.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	return app.Server.Stop(stopCtx)
}
