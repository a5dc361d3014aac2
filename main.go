package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"file-manager/actions"
	"file-manager/config"
	"file-manager/journal"
	"file-manager/listing"
	"file-manager/logging"
	"file-manager/platform"
	"file-manager/session"
	"file-manager/tasks"
	"file-manager/trash"
)

var (
	// Version information - these will be set at build time
	version   = "0.1.0"
	buildDate = "unknown"
	gitCommit = "unknown"
)

func registerFlags(fs *flag.FlagSet, cfg *config.Config, showVersion *bool) {
	fs.BoolVar(showVersion, "version", false, "Show version information and exit")
	fs.StringVar(&cfg.Browse.StartPath, "path", cfg.Browse.StartPath, "Directory to start browsing in")
	fs.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Address to listen on")
	fs.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Port to listen on")
	fs.BoolVar(&cfg.Browse.Write, "write", cfg.Browse.Write, "Enable write mode (allows paste, delete, rename, compress, extract, open-elevated, upload)")
	fs.BoolVar(&cfg.Browse.Elevate, "elevate", cfg.Browse.Elevate, "Restart with administrator privileges before serving (off by default; without it the server never relaunches itself)")
	fs.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Human-readable console logs")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Command-line flags override the environment
	var showVersion bool
	registerFlags(flag.CommandLine, cfg, &showVersion)
	flag.Parse()

	if showVersion {
		fmt.Printf("file-manager version %s\n", version)
		fmt.Printf("Build date: %s\n", buildDate)
		fmt.Printf("Git commit: %s\n", gitCommit)
		return
	}

	logger, flush, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		ErrorFile:   cfg.Logging.ErrorFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer flush()

	if cfg.Browse.Elevate && !platform.IsElevated() {
		if err := platform.RequestElevationAndRestart(); err != nil {
			logger.Error("elevation request failed, continuing unprivileged", zap.Error(err))
		} else {
			logger.Info("restarting with administrator privileges")
			flush()
			os.Exit(0)
		}
	}

	startPath, err := filepath.Abs(cfg.Browse.StartPath)
	if err != nil {
		logger.Fatal("invalid start path", zap.String("path", cfg.Browse.StartPath), zap.Error(err))
	}
	logger.Info("browsing", zap.String("path", startPath), zap.Bool("elevated", platform.IsElevated()))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	wsHub := newHub(logger)
	pool := tasks.New(tasks.Config{
		Workers:   cfg.Tasks.Workers,
		QueueSize: cfg.Tasks.QueueSize,
	}, tasks.NewMetrics(registry), func(t tasks.Task) {
		res := actions.TaskResult(t)
		if !res.OK() {
			logger.Error("task failed", zap.String("id", t.ID), zap.String("kind", t.Kind), zap.String("error", t.Error))
		}
		wsHub.broadcast(wsMessage{Type: msgTask, Result: &res})
	})

	jrnl := journal.New(cfg.Browse.Journal)
	sess := session.New(startPath)
	deps := actions.Deps{
		Session:   sess,
		Lister:    listing.NewLister(logger),
		Launcher:  platform.NewShell(),
		Clipboard: platform.SystemClipboard(),
		Tasks:     pool,
		Journal:   jrnl,
		Logger:    logger,
	}
	if bin, err := trash.Home(); err != nil {
		logger.Warn("no trash available, delete is disabled", zap.Error(err))
	} else {
		deps.Trash = bin
	}
	dispatcher := actions.New(deps)

	srv := &server{
		cfg:        cfg,
		dispatcher: dispatcher,
		pool:       pool,
		hub:        wsHub,
		journal:    jrnl,
		registry:   registry,
		logger:     logger,
	}
	app := newApp(srv)
	if err := setupTusUpload(app, srv); err != nil {
		logger.Error("upload disabled", zap.Error(err))
	}

	// Setup signal handler for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info("server starting", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}()

	<-sigChan
	logger.Info("received interrupt signal, waiting for in-progress operations")

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	pool.Close(false)
	logger.Info("all file operations completed, shutting down")
}
