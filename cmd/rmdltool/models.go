package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/riomodel/internal/manifest"
	"github.com/Faultbox/riomodel/pkg/rmdl"
)

// isContainer reports whether path names a model container, plain or
// zstd-wrapped.
func isContainer(path string) bool {
	name := strings.ToLower(strings.TrimSuffix(path, rmdl.ZstdExt))
	return strings.HasSuffix(name, rmdl.Ext)
}

// readContainer loads a container and works out its byte order from the
// file name suffix, else from the header.
func readContainer(path string) ([]byte, binary.ByteOrder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if data, err = rmdl.MaybeDecompress(data); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	order := rmdl.ByteOrderFromFileName(path)
	if order == nil {
		if order, err = rmdl.DetectByteOrder(data); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return data, order, nil
}

// loadModel reads a container, or builds a model from a manifest or a
// single OBJ, glTF or RSM source.
func loadModel(path string) (*rmdl.Model, error) {
	if isContainer(path) {
		return rmdl.Open(path, nil)
	}

	var (
		man *manifest.Manifest
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		if man, err = manifest.Load(path, cfg.Import.TextEncoding); err != nil {
			return nil, err
		}
	default:
		man = &manifest.Manifest{Meshes: []manifest.MeshSpec{{Source: filepath.Base(path)}}}
	}
	return manifest.Build(man, manifest.BuildOptions{
		BaseDir:       filepath.Dir(path),
		ShaderName:    cfg.Import.ShaderName,
		SamplerName:   cfg.Import.SamplerName,
		ModelEncoding: cfg.Import.ModelEncoding,
	})
}

// baseName strips directories, extensions and the byte order suffix:
// models/tree_LE.rmdl.zst gives tree.
func baseName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), rmdl.ZstdExt)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	for _, suffix := range []string{"_LE", "_BE"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return name
}

// outputPath returns explicit when set, else the configured name for base
// inside the output directory.
func outputPath(explicit, base string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Join(cfg.Output.Dir, cfg.OutputName(base))
}
