// rmdltool packs, inspects and converts rio model containers.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/Faultbox/riomodel/internal/config"
	"github.com/Faultbox/riomodel/internal/logger"
)

// cfg is the effective configuration, loaded before any command runs.
var cfg *config.Config

func main() {
	app := &cli.Command{
		Name:  "rmdltool",
		Usage: "rio model container utility",
		Flags: globalFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			var err error
			if cfg, err = config.Load(overrides); err != nil {
				return ctx, err
			}
			if err := logger.InitWithFileConfig(cfg.Logging.Level, cfg.LogFileConfig(), true); err != nil {
				return ctx, fmt.Errorf("initializing logger: %w", err)
			}
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			logger.Sync()
			return nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			packCmd(),
			inspectCmd(),
			dumpCmd(),
			convertCmd(),
			textureCmd(),
			configCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
