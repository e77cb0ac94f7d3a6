package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeusync/dropchooser/internal/app"
	"github.com/zeusync/dropchooser/internal/choices"
	"github.com/zeusync/dropchooser/internal/config"
	"github.com/zeusync/dropchooser/internal/core/observability/log"
	"github.com/zeusync/dropchooser/internal/game"
	"github.com/zeusync/dropchooser/internal/injector"
	"github.com/zeusync/dropchooser/internal/render/term"
	"github.com/zeusync/dropchooser/internal/render/window"
	"github.com/zeusync/dropchooser/internal/server"
	"github.com/zeusync/dropchooser/sdk/go/client"
)

var version = "dev"

const termLogFile = "dropchooser.log"

type flags struct {
	config   string
	choices  string
	frontend string
	feed     string
	watch    string
	seed     uint64
	debug    bool
	version  bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.config, "config", "", "path to a .json or .yaml config file")
	flag.StringVar(&f.choices, "choices", "", "choices file (.json or .csv, - for stdin json); overrides the config")
	flag.StringVar(&f.frontend, "frontend", "window", "frontend: headless, term or window")
	flag.StringVar(&f.feed, "feed", "", "serve a websocket frame feed on this address; overrides the config")
	flag.StringVar(&f.watch, "watch", "", "watch the frame feed at this address and print the winner")
	flag.Uint64Var(&f.seed, "seed", 0, "seed for spawn positions (0 picks one)")
	flag.BoolVar(&f.debug, "debug", false, "show tick and state in the window")
	flag.BoolVar(&f.version, "version", false, "print the version and exit")
	flag.Parse()
	return f
}

func main() {
	os.Exit(run(parseFlags()))
}

func run(f flags) int {
	if f.version {
		fmt.Println("dropchooser", version)
		return 0
	}

	if f.watch != "" {
		return watch(f.watch)
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		return 1
	}

	logger, err := injector.ProvideLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error creating logger:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cs, err := choices.Load(cfg.ChoicesPath)
	if err != nil {
		logger.Error("loading choices failed", log.String("path", cfg.ChoicesPath), log.Error(err))
		return 1
	}

	var opts []game.Option
	if f.seed != 0 {
		opts = append(opts, game.WithRand(rand.New(rand.NewPCG(f.seed, f.seed))))
	}
	g, err := injector.InitializeGame(cfg, cs, logger, opts)
	if err != nil {
		logger.Error("building the round failed", log.Error(err))
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stopCh)
	go func() {
		select {
		case sig := <-stopCh:
			logger.Info("shutting down", log.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	var feed *server.FeedServer
	if cfg.FeedAddr != "" {
		feed = server.NewFeedServer(cfg.FeedAddr, logger)
	}

	if err := play(ctx, f, g, feed, logger); err != nil {
		logger.Error("round failed", log.Error(err))
		return 1
	}
	if w, ok := g.Winner(); ok && f.frontend != "headless" {
		fmt.Println(game.WinnerText(w.Name))
	}
	return 0
}

func loadConfig(f flags) (*config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		loaded, err := config.Load(f.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if f.choices != "" {
		cfg.ChoicesPath = f.choices
	}
	if f.feed != "" {
		cfg.FeedAddr = f.feed
	}
	if f.frontend == "term" && (cfg.LogOutput == "" || cfg.LogOutput == "stderr" || cfg.LogOutput == "stdout") {
		cfg.LogOutput = termLogFile
	}
	return cfg, cfg.Validate()
}

func play(ctx context.Context, f flags, g *game.Game, feed *server.FeedServer, logger log.Log) error {
	opts := app.Options{
		TickRate:      g.Config().TickRate,
		Feed:          feed,
		StatsInterval: 5 * time.Second,
		Logger:        logger,
	}

	switch f.frontend {
	case "headless":
		return app.Run(ctx, g, app.NewHeadless(time.Second, 2*time.Second, os.Stdout), opts)

	case "term":
		fe, err := term.New(logger)
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		defer fe.Close()
		return app.Run(ctx, g, fe, opts)

	case "window":
		var wopts []window.Option
		if feed != nil {
			if err := feed.Start(ctx); err != nil {
				return err
			}
			defer func() {
				stopCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
				defer stop()
				if err := feed.Stop(stopCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
					logger.Warn("stopping feed failed", log.Error(err))
				}
			}()
			wopts = append(wopts, window.WithFeed(feed))
		}
		wopts = append(wopts, window.WithDebug(f.debug))
		return window.New(g, logger, wopts...).Run(ctx)

	default:
		return fmt.Errorf("unknown frontend %q", f.frontend)
	}
}

// watch spectates a running round and prints its winner.
func watch(addr string) int {
	logger, err := log.New(log.LevelWarn)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error creating logger:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := client.DefaultClientConfig()
	cfg.ServerAddr = addr
	c := client.NewClient(cfg, logger)
	defer func() { _ = c.Close() }()

	if err := c.Connect(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error connecting to feed:", err)
		return 1
	}
	frame, err := c.WaitWinner(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		fmt.Fprintln(os.Stderr, "Feed ended without a winner:", err)
		return 1
	}
	fmt.Println(frame.Banner.Text)
	return 0
}
