package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/serhiishtokal/CourseWatcher/internal/auth"
	"github.com/serhiishtokal/CourseWatcher/internal/config"
	"github.com/serhiishtokal/CourseWatcher/internal/library"
	"github.com/serhiishtokal/CourseWatcher/internal/log"
	"github.com/serhiishtokal/CourseWatcher/internal/scanner"
	"github.com/serhiishtokal/CourseWatcher/internal/server"
	"github.com/serhiishtokal/CourseWatcher/internal/storage"
)

const version = "1.0.0"

type rootFlags struct {
	configPath string
	root       string
	listen     string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:     "coursewatcher",
		Short:   "Turn a folder of downloaded videos into a progress-tracked course player",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flags)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "coursewatcher.toml", "path to the configuration file")
	cmd.PersistentFlags().StringVar(&flags.root, "root", "", "course root directory (overrides config)")
	cmd.PersistentFlags().StringVar(&flags.listen, "listen", "", "HTTP bind address (overrides config)")

	cmd.AddCommand(newServeCommand(flags))
	cmd.AddCommand(newScanCommand(flags))
	cmd.AddCommand(newStatsCommand(flags))
	cmd.AddCommand(newInitConfigCommand(flags))

	return cmd
}

func loadConfig(flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flags.root != "" {
		cfg.Root = flags.root
	}
	if flags.listen != "" {
		cfg.Listen = flags.listen
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	log.Configure(log.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return cfg, nil
}

func newServeCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Scan the course root and serve the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flags)
		},
	}
}

func runServe(flags *rootFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logger := log.WithComponent("main")

	store, err := storage.Open(cfg.DataDir(), storage.Options{})
	if err != nil {
		// a half-initialized store must not serve traffic
		return err
	}

	gate, err := auth.NewGate(cfg.Password, 24*time.Hour)
	if err != nil {
		_ = store.Close()
		return err
	}

	svc := library.New(store, cfg.CompletionThreshold)
	sc := scanner.New(store, cfg.DataDirName)
	srv := server.New(cfg, svc, sc, gate)

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		logger.Info().Msg("shutting down")
		_ = srv.Close()
		_ = store.Close()
	}()

	err = srv.Start()
	_ = store.Close()
	return err
}

func newInitConfigCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write an annotated sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteSample(flags.configPath); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", flags.configPath)
			return nil
		},
	}
}
