package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/Faultbox/riomodel/internal/manifest"
)

func dumpCmd() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "Print a model as JSON",
		ArgsUsage: "<file.rmdl|manifest|source>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return cli.Exit("error: dump needs one model", 1)
			}
			m, err := loadModel(c.Args().First())
			if err != nil {
				return err
			}
			out, err := manifest.Dump(m)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(os.Stdout, string(out))
			return err
		},
	}
}
