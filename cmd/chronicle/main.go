// Command chronicle runs the temporal annotation game engine: serve
// its HTTP façade, print the opening observation of an episode from a
// corpus document, or run an ad-hoc Prolog query over an empty timeline.
package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rfielding/chronicle/pkg/config"
	"github.com/rfielding/chronicle/pkg/corpus"
	"github.com/rfielding/chronicle/pkg/game"
	"github.com/rfielding/chronicle/pkg/query"
	"github.com/rfielding/chronicle/pkg/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "chronicle",
		Short: "Temporal annotation game engine",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to chronicle.yaml (defaults if unset)")

	loadConfig := func() (config.Config, error) {
		if configPath == "" {
			return config.Default(), nil
		}
		return config.Load(configPath)
	}

	root.AddCommand(newServeCmd(loadConfig))
	root.AddCommand(newPlayCmd(loadConfig))
	root.AddCommand(newQueryCmd(loadConfig))
	return root
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.LogLevel != "" {
		var level zap.AtomicLevel
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, fmt.Errorf("chronicle: bad log_level %q: %w", cfg.LogLevel, err)
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}

func newServeCmd(loadConfig func() (config.Config, error)) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			s := server.New(log)
			log.Info("starting chronicle server", zap.String("addr", cfg.Addr))
			return s.ListenAndServe(cfg.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	return cmd
}

func newPlayCmd(loadConfig func() (config.Config, error)) *cobra.Command {
	var level int
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Print the initial context and board of an episode sampled (fixed seed) from the configured corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if level != 0 {
				cfg.Level = level
			}
			if cfg.CorpusRoot == "" {
				return fmt.Errorf("chronicle play: corpus_root is not configured")
			}

			c, err := corpus.Load(cfg.CorpusRoot, cfg.Level)
			if err != nil {
				return err
			}
			doc, err := c.Sample(rand.New(rand.NewSource(1)))
			if err != nil {
				return err
			}

			g, err := game.New(doc)
			if err != nil {
				return err
			}
			obs, _ := g.Reset()
			fmt.Println(obs.Context)
			fmt.Println(obs.Board)
			return nil
		},
	}
	cmd.Flags().IntVar(&level, "level", 0, "difficulty level 2-5 (overrides config)")
	return cmd
}

func newQueryCmd(loadConfig func() (config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <prolog-query>",
		Short: "Run an ad-hoc Prolog query over an empty timeline (smoke test for the core predicates)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := query.New()
			if err != nil {
				return err
			}
			result, err := e.RawQuery(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(result)
			return nil
		},
	}
	return cmd
}
