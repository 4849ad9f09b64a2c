package main

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/riomodel/internal/logger"
	"github.com/Faultbox/riomodel/pkg/rtx"
)

func textureCmd() *cli.Command {
	return &cli.Command{
		Name:  "texture",
		Usage: "Work with rtx texture containers",
		Commands: []*cli.Command{
			{
				Name:      "pack",
				Usage:     "Convert png, jpeg, gif, bmp or tiff images to rtx",
				ArgsUsage: "<image>...",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.NArg() == 0 {
						return cli.Exit("error: texture pack needs at least one image", 1)
					}
					if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
						return fmt.Errorf("creating output directory: %w", err)
					}
					for _, src := range c.Args().Slice() {
						if err := packTexture(src); err != nil {
							return err
						}
					}
					return nil
				},
			},
			{
				Name:      "info",
				Usage:     "Show the header of an rtx file",
				ArgsUsage: "<file.rtx>",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.NArg() != 1 {
						return cli.Exit("error: texture info needs one file", 1)
					}
					t, err := rtx.ParseFile(c.Args().First())
					if err != nil {
						return err
					}
					printTexture(c.Args().First(), t)
					return nil
				},
			},
			{
				Name:      "extract",
				Usage:     "Write level 0 of an rtx file as png",
				ArgsUsage: "<file.rtx> [output.png]",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.NArg() < 1 || c.NArg() > 2 {
						return cli.Exit("error: texture extract needs a file and an optional output path", 1)
					}
					src, dst := c.Args().Get(0), c.Args().Get(1)
					if dst == "" {
						dst = filepath.Join(cfg.Output.Dir, baseName(src)+".png")
					}
					return extractTexture(src, dst)
				},
			},
		},
	}
}

func packTexture(src string) error {
	img, err := rtx.DecodeImageFile(src)
	if err != nil {
		return err
	}
	t := rtx.FromImage(img)
	dst := filepath.Join(cfg.Output.Dir, baseName(src)+".rtx")
	if err := rtx.WriteFile(dst, t); err != nil {
		return fmt.Errorf("%s: %w", dst, err)
	}
	logger.Info("Packed texture",
		zap.String("source", src),
		zap.String("output", dst),
		zap.Uint32("width", t.Header.Width),
		zap.Uint32("height", t.Header.Height),
	)
	return nil
}

func extractTexture(src, dst string) error {
	t, err := rtx.ParseFile(src)
	if err != nil {
		return err
	}
	img, err := rtx.ToImage(t)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("Extracted texture", zap.String("source", src), zap.String("output", dst))
	return nil
}

func printTexture(path string, t *rtx.Texture) {
	h := &t.Header
	fmt.Printf("Texture: %s\n", path)
	fmt.Printf("  Size:       %dx%d\n", h.Width, h.Height)
	fmt.Printf("  Format:     %s (0x%03x)\n", h.Format, uint32(h.Format))
	if gl, err := h.Format.GL(); err == nil {
		fmt.Printf("  GL:         internal 0x%04x format 0x%04x type 0x%04x\n",
			gl.InternalFormat, gl.Format, gl.Type)
	}
	fmt.Printf("  Mip levels: %d\n", h.MipLevels)
	fmt.Printf("  Image:      %d bytes @0x%x\n", h.ImageSize, h.ImageOffset)
	if h.MipLevels > 1 {
		offs := make([]string, 0, h.MipLevels-1)
		for i := uint32(0); i < h.MipLevels-1; i++ {
			offs = append(offs, fmt.Sprintf("0x%x", h.MipLevelOffset[i]))
		}
		fmt.Printf("  Mipmaps:    %d bytes @0x%x (levels at %s)\n",
			h.MipmapSize, h.MipmapsOffset, strings.Join(offs, ", "))
	}
	fmt.Printf("  Comp map:   0x%08x\n", h.CompMap)
}
