package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/riomodel/internal/config"
	"github.com/Faultbox/riomodel/internal/logger"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or save the effective configuration",
		Action: func(ctx context.Context, c *cli.Command) error {
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(out)
			return err
		},
		Commands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "Write the effective configuration to the user config directory or a path",
				ArgsUsage: "[path]",
				Action: func(ctx context.Context, c *cli.Command) error {
					path := c.Args().First()
					save := func() error { return cfg.SaveTo(path) }
					if path == "" {
						path = filepath.Join(config.ConfigDir(), config.FileName)
						save = cfg.Save
					}
					if err := save(); err != nil {
						return fmt.Errorf("saving config: %w", err)
					}
					logger.Sugar.Infof("Saved config to %s", path)
					return nil
				},
			},
		},
	}
}
