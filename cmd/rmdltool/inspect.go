package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/Faultbox/riomodel/pkg/rmdl"
)

func inspectCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show the layout of a container",
		ArgsUsage: "<file.rmdl>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the report as JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return cli.Exit("error: inspect needs one container", 1)
			}
			path := c.Args().First()

			data, order, err := readContainer(path)
			if err != nil {
				return err
			}
			info, err := rmdl.Inspect(data, order)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			if asJSON {
				out, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(os.Stdout, string(out))
				return err
			}
			printInfo(path, info)
			return nil
		},
	}
}

func printInfo(path string, info *rmdl.Info) {
	fmt.Printf("Container: %s\n", path)
	fmt.Printf("  Byte order:  %s\n", info.ByteOrder)
	fmt.Printf("  Version:     0x%08x\n", info.Version)
	fmt.Printf("  File size:   %d bytes\n", info.FileSize)
	fmt.Printf("  Fingerprint: %016x\n", info.Fingerprint)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nRegion\tStart\tSize")
	for _, r := range info.Regions {
		fmt.Fprintf(w, "%s\t0x%06x\t%d\n", r.Name, r.Start, r.Size)
	}
	w.Flush()

	fmt.Printf("\nMeshes (%d):\n", len(info.Meshes))
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tRecord\tVertices\tIndices\tMaterial")
	for i, m := range info.Meshes {
		mat := "-"
		if m.MaterialIndex != rmdl.NoMaterial {
			mat = fmt.Sprint(m.MaterialIndex)
		}
		fmt.Fprintf(w, "%d\t0x%06x\t%d @0x%x\t%d @0x%x\t%s\n",
			i, m.Record, m.Vertices, m.VertexBuf, m.Indices, m.IndexBuf, mat)
	}
	w.Flush()

	fmt.Printf("\nMaterials (%d):\n", len(info.Materials))
	for i, m := range info.Materials {
		fmt.Printf("  %d: %s (shader %s)", i, m.Name, m.ShaderName)
		if len(m.Textures) > 0 {
			fmt.Printf(" textures: %s", strings.Join(m.Textures, ", "))
		}
		fmt.Println()
	}
}
