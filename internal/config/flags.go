package config

import (
	"flag"
	"strconv"
	"strings"
)

// pathList is a repeatable string flag.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// Command-line overrides. Zero values leave the loaded config untouched.
var (
	flagConfig      = flag.String("config", "", "config file (default: ./"+FileName+", then the user config dir)")
	flagWriteConfig = flag.String("write-config", "", "write the effective config to this file and exit")
	flagDebug       = flag.Bool("debug", false, "log at debug level")
	flagLogFile     = flag.String("log", "", "also log to this rotating file")
	flagFullscreen  = flag.Bool("fullscreen", false, "open a fullscreen window")
	flagWindowed    = flag.Bool("windowed", false, "open a window even if the config asks for fullscreen")
	flagSize        = flag.String("size", "", "window size as WxH, e.g. 1920x1080")
	flagModels      pathList
)

func init() {
	flag.Var(&flagModels, "model", "OBJ file to show; repeat for more (replaces scene.models and fits the camera)")
}

// ParseFlags parses the process arguments. Call it before Load.
func ParseFlags() {
	flag.Parse()
}

// WritePath returns the -write-config target, or "" when unset.
func WritePath() string {
	return *flagWriteConfig
}

func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if w, h, ok := parseSize(*flagSize); ok {
		cfg.Graphics.Width, cfg.Graphics.Height = w, h
	}
	if len(flagModels) == 0 {
		return
	}
	models := make([]ModelConfig, len(flagModels))
	for i, p := range flagModels {
		models[i] = ModelConfig{Path: p, Scale: 1}
	}
	cfg.Scene.Models = models
	cfg.Scene.Camera.Fit = true
}

// parseSize reads "WxH". Malformed or non-positive sizes are ignored.
func parseSize(s string) (w, h int, ok bool) {
	ws, hs, found := strings.Cut(strings.ToLower(s), "x")
	if !found {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(ws)
	h, errH := strconv.Atoi(hs)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
