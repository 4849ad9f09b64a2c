package main

import (
	"github.com/urfave/cli/v3"

	"github.com/Faultbox/riomodel/internal/config"
)

var overrides config.Overrides

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to " + config.FileName,
			Destination: &overrides.ConfigPath,
		},
		&cli.BoolFlag{Name: "debug", Usage: "log at debug level", Destination: &overrides.Debug},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "log errors only", Destination: &overrides.Quiet},
		&cli.StringFlag{
			Name:        "byte-order",
			Aliases:     []string{"b"},
			Usage:       "container byte order (LE, BE)",
			Destination: &overrides.ByteOrder,
		},
		&cli.StringFlag{
			Name:        "output-dir",
			Aliases:     []string{"d"},
			Usage:       "directory for written files",
			Destination: &overrides.OutputDir,
		},
		&cli.BoolFlag{Name: "zstd", Usage: "write zstd-wrapped containers", Destination: &overrides.Zstd},
		&cli.StringFlag{
			Name:        "encoding",
			Usage:       "text encoding of manifest files (utf-8, euc-kr, shift-jis, ...)",
			Destination: &overrides.Encoding,
		},
		&cli.StringFlag{
			Name:        "shader",
			Usage:       "shader name for materials that do not set one",
			Destination: &overrides.Shader,
		},
	}
}
