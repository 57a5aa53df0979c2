package config

import "flag"

// Flags are the command-line overrides for a Config.
type Flags struct {
	fs *flag.FlagSet

	Config     *string
	Debug      *bool
	OutputDir  *string
	DensityMin *float64
	DensityMax *float64
	Confirm    *bool
	FailFast   *bool
	Library    *string
	Manifest   *string
}

// RegisterFlags defines the config flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs:         fs,
		Config:     fs.String("config", "", "Path to config file"),
		Debug:      fs.Bool("debug", false, "Enable debug logging"),
		OutputDir:  fs.String("out", "", "Output directory for PLY files"),
		DensityMin: fs.Float64("density-min", 0, "Minimum point density per unit area"),
		DensityMax: fs.Float64("density-max", 0, "Maximum point density per unit area"),
		Confirm:    fs.Bool("confirm", false, "Ask for confirmation before exporting"),
		FailFast:   fs.Bool("fail-fast", false, "Stop at the first failed mesh"),
		Library:    fs.String("library", "", "Path to the asset library"),
		Manifest:   fs.String("manifest", "", "Path to the export history database"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.Config
}

// apply copies every flag given on the command line into cfg.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			if *f.Debug {
				cfg.Logging.Level = "debug"
			}
		case "out":
			cfg.Export.OutputDir = *f.OutputDir
		case "density-min":
			cfg.Export.DensityMin = float32(*f.DensityMin)
		case "density-max":
			cfg.Export.DensityMax = float32(*f.DensityMax)
		case "confirm":
			cfg.Export.Confirm = *f.Confirm
		case "fail-fast":
			cfg.Export.ContinueOnError = !*f.FailFast
		case "library":
			cfg.Library.Path = *f.Library
		case "manifest":
			cfg.Manifest.Path = *f.Manifest
		}
	})
}
