package config

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/junsooki/pixwin/internal/font"
)

// DemoConfig holds configuration for the demo binary.
type DemoConfig struct {
	Title    string
	Width    int
	Height   int
	FPS      int
	FontPath string
	Alphabet string
	RowScan  bool
	Headless bool
	Frames   int
	Snapshot string
	Quality  int
	Remote   string
}

// ParseDemoFlags parses flags for the demo binary.
func ParseDemoFlags() (*DemoConfig, error) {
	return parseDemo(flag.CommandLine, os.Args[1:])
}

func parseDemo(fs *flag.FlagSet, args []string) (*DemoConfig, error) {
	cfg := &DemoConfig{}
	fs.StringVar(&cfg.Title, "title", "pixwin", "Window title")
	fs.IntVar(&cfg.Width, "width", 640, "Window width in pixels")
	fs.IntVar(&cfg.Height, "height", 480, "Window height in pixels")
	fs.IntVar(&cfg.FPS, "fps", 60, "Target frames per second (0 = unpaced)")
	fs.StringVar(&cfg.FontPath, "font", "", "Bitmap font image (built-in font if empty)")
	fs.StringVar(&cfg.Alphabet, "alphabet", font.DefaultAlphabet, "Runes of the font image, in band order")
	fs.BoolVar(&cfg.RowScan, "rowscan", false, "Scan only the first row of the font image")
	fs.BoolVar(&cfg.Headless, "headless", false, "Render offscreen instead of opening a window")
	fs.IntVar(&cfg.Frames, "frames", 0, "Quit after this many frames (0 = run until closed)")
	fs.StringVar(&cfg.Snapshot, "snapshot", "", "Write the last headless frame to this .png or .jpg file")
	fs.IntVar(&cfg.Quality, "quality", 70, "JPEG quality (1-100)")
	fs.StringVar(&cfg.Remote, "remote", "", "Listen address for remote viewers, e.g. :8080 (disabled if empty)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FPS < 0 {
		return nil, fmt.Errorf("fps must not be negative, got %d", cfg.FPS)
	}
	if cfg.Frames < 0 {
		return nil, fmt.Errorf("frames must not be negative, got %d", cfg.Frames)
	}
	if cfg.Snapshot != "" && !cfg.Headless {
		return nil, errors.New("-snapshot requires -headless")
	}
	if cfg.Remote != "" && !cfg.Headless {
		return nil, errors.New("-remote requires -headless")
	}
	if cfg.Headless && cfg.Frames == 0 && cfg.Remote == "" {
		// Nothing could ever stop the loop.
		cfg.Frames = 1
	}
	return cfg, nil
}

// FontscanConfig holds configuration for the fontscan binary.
type FontscanConfig struct {
	Path     string
	Alphabet string
	RowScan  bool
}

// ParseFontscanFlags parses flags for the fontscan binary. The font image
// path is the single positional argument.
func ParseFontscanFlags() (*FontscanConfig, error) {
	return parseFontscan(flag.CommandLine, os.Args[1:])
}

func parseFontscan(fs *flag.FlagSet, args []string) (*FontscanConfig, error) {
	cfg := &FontscanConfig{}
	fs.StringVar(&cfg.Alphabet, "alphabet", font.DefaultAlphabet, "Runes of the font image, in band order")
	fs.BoolVar(&cfg.RowScan, "rowscan", false, "Scan only the first row of the font image")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, errors.New("usage: fontscan [-alphabet runes] [-rowscan] <font image>")
	}
	cfg.Path = fs.Arg(0)
	return cfg, nil
}
