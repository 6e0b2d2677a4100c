package main

import (
	"os"

	"github.com/deepnoodle-ai/mirror"
	"github.com/deepnoodle-ai/mirror/internal/config"
	"github.com/deepnoodle-ai/mirror/internal/logging"
	"github.com/deepnoodle-ai/mirror/loader"
	"github.com/deepnoodle-ai/mirror/store"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by all commands once flags are parsed.
type app struct {
	v     *viper.Viper
	cfg   *config.Config
	log   zerolog.Logger
	cache store.Store
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New(), log: zerolog.Nop()}
	root := &cobra.Command{
		Use:               "mirror",
		Short:             "Inspect and call script classes compiled in memory",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
	}
	f := root.PersistentFlags()
	f.String("config", "", "config file (default ./mirror.yaml or ~/.config/mirror/mirror.yaml)")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.Bool("no-color", false, "disable colored output")
	f.String("cache", "", "artifact cache driver (none, memory, sqlite, postgres, s3, redis)")
	a.v.BindPFlag("log_level", f.Lookup("log-level"))
	a.v.BindPFlag("no_color", f.Lookup("no-color"))
	a.v.BindPFlag("cache.driver", f.Lookup("cache"))
	a.v.BindEnv("no_color", "NO_COLOR")

	root.AddCommand(newInspectCmd(a), newCallCmd(a), newVersionCmd())
	return root
}

// setup reads the configuration and builds the logger and artifact cache.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(a.v, path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if cfg.NoColor {
		color.NoColor = true
	}
	a.log, err = logging.New(os.Stderr, logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		NoColor: cfg.NoColor,
	})
	if err != nil {
		return err
	}
	a.cache, err = store.Open(cmd.Context(), cfg.Cache)
	return err
}

func (a *app) teardown(cmd *cobra.Command, args []string) {
	if c, ok := a.cache.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing artifact cache")
		}
	}
}

// compileOptions maps the configuration onto facade options.
func (a *app) compileOptions() []mirror.Option {
	opts := []mirror.Option{mirror.WithLogger(a.log)}
	if a.cache != nil {
		opts = append(opts, mirror.WithCache(a.cache))
	}
	if a.cfg != nil && len(a.cfg.Globals) > 0 {
		globals := loader.DefaultGlobals()
		for _, name := range a.cfg.Globals {
			if value, ok := os.LookupEnv(name); ok {
				globals[name] = value
			} else if _, ok := globals[name]; !ok {
				globals[name] = nil
			}
		}
		opts = append(opts, mirror.WithGlobals(globals))
	}
	return opts
}
