package config

// Overrides carries command-line settings. Zero values leave the loaded
// configuration alone.
type Overrides struct {
	ConfigPath string
	Debug      bool
	Quiet      bool
	ByteOrder  string
	OutputDir  string
	Zstd       bool
	Encoding   string
	Shader     string
}

// Apply applies CLI overrides to the config.
func (c *Config) Apply(o Overrides) {
	if o.Debug {
		c.Logging.Level = "debug"
	}
	if o.Quiet {
		c.Logging.Level = "error"
	}
	if o.ByteOrder != "" {
		c.Codec.ByteOrder = o.ByteOrder
	}
	if o.OutputDir != "" {
		c.Output.Dir = o.OutputDir
	}
	if o.Zstd {
		c.Output.Zstd = true
	}
	if o.Encoding != "" {
		c.Import.TextEncoding = o.Encoding
	}
	if o.Shader != "" {
		c.Import.ShaderName = o.Shader
	}
}
