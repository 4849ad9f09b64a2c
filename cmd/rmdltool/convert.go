package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/riomodel/internal/logger"
	"github.com/Faultbox/riomodel/pkg/rmdl"
)

func convertCmd() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Re-encode a container in the other byte order",
		Description: "The target order is --byte-order when given, else the opposite of the source.\n" +
			"Without an output path the file is written as <base>_LE.rmdl or <base>_BE.rmdl.",
		ArgsUsage: "<file.rmdl> [output]",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() < 1 || c.NArg() > 2 {
				return cli.Exit("error: convert needs a container and an optional output path", 1)
			}
			src := c.Args().Get(0)

			data, from, err := readContainer(src)
			if err != nil {
				return err
			}
			m, err := rmdl.Decode(data, from)
			if err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}

			to := opposite(from)
			if overrides.ByteOrder != "" {
				to = cfg.ByteOrder()
			}
			log := logger.Model(src)
			if to == from {
				log.Warn("Source already has the target byte order", zap.String("byteOrder", rmdl.ByteOrderName(to)))
			}

			dst := c.Args().Get(1)
			if dst == "" {
				name := rmdl.FileName(baseName(src), to)
				if cfg.Output.Zstd {
					name += rmdl.ZstdExt
				}
				dst = filepath.Join(cfg.Output.Dir, name)
			}
			if err := rmdl.WriteFile(dst, m, to); err != nil {
				return err
			}
			log.Info("Converted model",
				zap.String("from", rmdl.ByteOrderName(from)),
				zap.String("to", rmdl.ByteOrderName(to)),
				zap.String("output", dst),
			)
			return nil
		},
	}
}

func opposite(order binary.ByteOrder) binary.ByteOrder {
	if order == binary.BigEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}
