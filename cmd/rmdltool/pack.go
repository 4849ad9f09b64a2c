package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/riomodel/internal/logger"
	"github.com/Faultbox/riomodel/pkg/rmdl"
)

func packCmd() *cli.Command {
	var output string

	return &cli.Command{
		Name:      "pack",
		Usage:     "Build containers from manifests, OBJ or glTF files",
		ArgsUsage: "<source>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output file (single source only)",
				Destination: &output,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			sources := c.Args().Slice()
			if len(sources) == 0 {
				return cli.Exit("error: pack needs at least one source", 1)
			}
			if output != "" && len(sources) > 1 {
				return cli.Exit("error: --output needs a single source", 1)
			}
			if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}

			for _, src := range sources {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := pack(src, outputPath(output, baseName(src))); err != nil {
					return fmt.Errorf("%s: %w", src, err)
				}
			}
			return nil
		},
	}
}

func pack(src, dst string) error {
	log := logger.Model(src)
	log.Debug("Building model")

	m, err := loadModel(src)
	if err != nil {
		return err
	}
	order := cfg.ByteOrder()
	if err := rmdl.WriteFile(dst, m, order); err != nil {
		return err
	}

	log.Info("Packed model",
		zap.String("output", dst),
		zap.String("byteOrder", rmdl.ByteOrderName(order)),
		zap.Int("meshes", len(m.Meshes)),
		zap.Int("materials", len(m.Materials)),
		zap.Int("vertices", m.TotalVertexCount()),
		zap.Int("indices", m.TotalIndexCount()),
	)
	return nil
}
