// Package config handles rmdltool configuration loading and management.
package config

import (
	"encoding/binary"
	"fmt"

	"github.com/Faultbox/riomodel/internal/logger"
	"github.com/Faultbox/riomodel/pkg/encoding"
	"github.com/Faultbox/riomodel/pkg/rmdl"
)

// Config holds all tool settings.
type Config struct {
	Codec   CodecConfig   `yaml:"codec"`
	Import  ImportConfig  `yaml:"import"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// CodecConfig holds container encoding settings.
type CodecConfig struct {
	ByteOrder string `yaml:"byte_order"` // "LE" or "BE"
}

// ImportConfig holds defaults for models built from OBJ, glTF and
// manifests.
type ImportConfig struct {
	ShaderName    string `yaml:"shader_name"`
	SamplerName   string `yaml:"sampler_name"`
	TextEncoding  string `yaml:"text_encoding"`  // encoding of manifest files
	ModelEncoding string `yaml:"model_encoding"` // encoding of names in RSM files
}

// OutputConfig holds where and how files are written.
type OutputConfig struct {
	Dir             string `yaml:"dir"`
	Zstd            bool   `yaml:"zstd"`
	ByteOrderSuffix bool   `yaml:"byte_order_suffix"` // name files <base>_LE.rmdl
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Codec: CodecConfig{
			ByteOrder: "LE",
		},
		Import: ImportConfig{
			ShaderName:    "basic",
			SamplerName:   "texture0",
			TextEncoding:  "utf-8",
			ModelEncoding: "euc-kr",
		},
		Output: OutputConfig{
			Dir:             ".",
			Zstd:            false,
			ByteOrderSuffix: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

// Validate checks the settings that name things.
func (c *Config) Validate() error {
	if _, err := rmdl.ByteOrderFromName(c.Codec.ByteOrder); err != nil {
		return fmt.Errorf("codec.byte_order: %w", err)
	}
	if _, err := encoding.Lookup(c.Import.TextEncoding); err != nil {
		return fmt.Errorf("import.text_encoding: %w", err)
	}
	if _, err := encoding.Lookup(c.Import.ModelEncoding); err != nil {
		return fmt.Errorf("import.model_encoding: %w", err)
	}
	if c.Import.ShaderName == "" {
		return fmt.Errorf("import.shader_name: must not be empty")
	}
	return nil
}

// ByteOrder returns the configured container byte order.
func (c *Config) ByteOrder() binary.ByteOrder {
	order, err := rmdl.ByteOrderFromName(c.Codec.ByteOrder)
	if err != nil {
		return binary.LittleEndian
	}
	return order
}

// OutputName returns the file name for a model with the given base name,
// honoring the byte order suffix and zstd settings.
func (c *Config) OutputName(base string) string {
	var order binary.ByteOrder
	if c.Output.ByteOrderSuffix {
		order = c.ByteOrder()
	}
	name := rmdl.FileName(base, order)
	if c.Output.Zstd {
		name += ".zst"
	}
	return name
}

// LogFileConfig returns the rotating file settings for the logger.
func (c *Config) LogFileConfig() logger.FileConfig {
	if c.Logging.LogFile == "" {
		return logger.FileConfig{}
	}
	fc := logger.DefaultFileConfig(c.Logging.LogFile)
	if c.Logging.MaxSizeMB > 0 {
		fc.MaxSizeMB = c.Logging.MaxSizeMB
	}
	if c.Logging.MaxBackups > 0 {
		fc.MaxBackups = c.Logging.MaxBackups
	}
	return fc
}
