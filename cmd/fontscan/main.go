package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/junsooki/pixwin/internal/backend/soft"
	"github.com/junsooki/pixwin/internal/config"
	"github.com/junsooki/pixwin/internal/font"
)

func main() {
	cfg, err := config.ParseFontscanFlags()
	if err != nil {
		log.Fatal(err)
	}
	if err := scan(cfg, os.Stdout); err != nil {
		log.Fatalf("fontscan: %v", err)
	}
}

// scan loads the font image and writes its glyph table to out.
func scan(cfg *config.FontscanConfig, out io.Writer) error {
	var opts []font.LoadOption
	if cfg.RowScan {
		opts = append(opts, font.WithRowScan())
	}
	// The texture is never drawn; any creator will do.
	f, err := font.LoadFile(cfg.Path, cfg.Alphabet, soft.New(1, 1), opts...)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUNE\tX\tY\tW\tH")
	for _, r := range f.Runes() {
		g, _ := f.Glyph(r)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", strconv.QuoteRune(r), g.X, g.Y, g.W, g.H)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	want := utf8.RuneCountInString(cfg.Alphabet)
	fmt.Fprintf(out, "%d of %d glyphs, height %d\n", f.Len(), want, f.Height())
	if f.Len() < want {
		log.Printf("warning: image has fewer glyphs than the alphabet (%d < %d)", f.Len(), want)
	}
	return nil
}
