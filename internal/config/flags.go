package config

import (
	"flag"
	"strings"
)

// Flags holds the command-line overrides shared by every md5tool command.
type Flags struct {
	Config  string
	Debug   bool
	Paths   string
	Mode    string
	NoLoop  bool
	Reverse bool
	LogFile string
}

// RegisterFlags adds the shared flags to fs and returns their destination.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Paths, "path", "", "Comma-separated search paths (directories or .pk4), replaces the configured list")
	fs.StringVar(&f.Mode, "mode", "", "Pose mode: bind or frames")
	fs.BoolVar(&f.NoLoop, "noloop", false, "Clamp frame playback at the last frame")
	fs.BoolVar(&f.Reverse, "reverse", false, "Reverse triangle winding on export")
	fs.StringVar(&f.LogFile, "log", "", "Write logs to this file")
	return f
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Paths != "" {
		var paths []string
		for _, p := range strings.Split(f.Paths, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		cfg.Data.SearchPaths = paths
	}
	if f.Mode != "" {
		cfg.Animation.Mode = f.Mode
	}
	if f.NoLoop {
		cfg.Animation.Loop = false
	}
	if f.Reverse {
		cfg.Export.ReverseWinding = true
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
