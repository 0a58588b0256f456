package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/junsooki/pixwin/internal/backend"
	"github.com/junsooki/pixwin/internal/backend/soft"
	"github.com/junsooki/pixwin/internal/capture"
	"github.com/junsooki/pixwin/internal/config"
	"github.com/junsooki/pixwin/internal/display"
	"github.com/junsooki/pixwin/internal/encoder"
	"github.com/junsooki/pixwin/internal/event"
	"github.com/junsooki/pixwin/internal/font"
	"github.com/junsooki/pixwin/internal/remote"
	"github.com/junsooki/pixwin/internal/session"
	"github.com/junsooki/pixwin/internal/shape"
)

func main() {
	cfg, err := config.ParseDemoFlags()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	log.Printf("pixwin demo starting")
	log.Printf("  Size:      %dx%d", cfg.Width, cfg.Height)
	log.Printf("  FPS:       %d", cfg.FPS)
	log.Printf("  Headless:  %t", cfg.Headless)
	if cfg.Remote != "" {
		log.Printf("  Remote:    %s", cfg.Remote)
	}

	if cfg.Headless {
		runHeadless(cfg)
		return
	}

	disp := display.NewEbiten()
	win, err := session.New(cfg.Title, cfg.Width, cfg.Height,
		session.WithBackend(disp.Open), session.WithFPS(cfg.FPS))
	if err != nil {
		log.Fatalf("open window: %v", err)
	}
	prepare(win, cfg)

	// Ebitengine RunGame must be on the main goroutine (macOS requirement).
	if err := disp.Run(func() { loop(win, cfg) }); err != nil {
		log.Fatalf("display: %v", err)
	}
	win.Close()
}

func runHeadless(cfg *config.DemoConfig) {
	sb := soft.New(cfg.Width, cfg.Height)
	win, err := session.New(cfg.Title, cfg.Width, cfg.Height,
		session.WithBackend(func(string, int, int) (backend.Backend, error) { return sb, nil }),
		session.WithFPS(cfg.FPS))
	if err != nil {
		log.Fatalf("open window: %v", err)
	}
	defer win.Close()
	prepare(win, cfg)

	// Interrupts arrive as a quit so the loop ends between frames.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		sb.Push(event.Native{Kind: event.NativeQuit})
	}()

	if cfg.Remote != "" {
		tap := capture.NewTap(2)
		sb.OnFrame(tap.Handle)
		defer tap.Close()

		srv := remote.NewServer(sb, remote.WithEncoder(encoder.NewJPEGEncoder(cfg.Quality)))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := srv.Stream(ctx, tap.Frames()); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("stream: %v", err)
			}
		}()
		go func() {
			if err := http.ListenAndServe(cfg.Remote, srv); err != nil {
				log.Printf("remote server: %v", err)
			}
		}()
		log.Printf("Remote viewers can connect to ws://%s", cfg.Remote)
	}

	loop(win, cfg)

	if cfg.Snapshot != "" {
		// The last frame was drawn but never presented.
		sb.Present()
		if err := writeSnapshot(cfg.Snapshot, cfg.Quality, sb); err != nil {
			log.Fatalf("snapshot: %v", err)
		}
		log.Printf("Snapshot written to %s", cfg.Snapshot)
	}
}

// prepare logs the opened window and installs the font given by -font.
func prepare(win *session.Window, cfg *config.DemoConfig) {
	log.Printf("Window %q opened (%dx%d, %d fps)", cfg.Title, cfg.Width, cfg.Height, cfg.FPS)
	if cfg.FontPath == "" {
		return
	}
	var opts []font.LoadOption
	if cfg.RowScan {
		opts = append(opts, font.WithRowScan())
	}
	f, err := win.LoadFontFromFile(cfg.FontPath, cfg.Alphabet, opts...)
	if err != nil {
		log.Fatalf("load font: %v", err)
	}
	log.Printf("Loaded %d glyphs from %s", f.Len(), cfg.FontPath)
	win.SetFont(f)
}

func loop(win *session.Window, cfg *config.DemoConfig) {
	frames := 0
	last := "none"
	for win.NextFrame() {
		for win.HasEvent() {
			e := win.NextEvent()
			last = describe(e)
			log.Printf("event: %s", last)
			if e.Type == event.EventKeyDown && e.Key == event.KeyEscape {
				win.Quit()
			}
		}

		win.ClearToColor(16, 16, 32)

		win.SetColor(255, 255, 255, 255)
		title := win.Print("pixwin demo", 10, 10)
		mx, my := win.MousePosition()
		win.Print(fmt.Sprintf("mouse %d,%d", mx, my), 10, title.Bottom()+4)
		win.Print("last: "+last, 10, title.Bottom()+8+int32(win.Font().Height()))

		win.SetColor(255, 200, 0, 255)
		win.DrawRect(shape.NewRect(8, 8, title.W+4, title.H+4))
		if win.IsMouseButtonDown(event.MouseButtonLeft) {
			win.FillRect(shape.NewRect(mx-2, my-2, 5, 5))
		}

		win.SetColor(0, 200, 255, 255)
		win.DrawPolygon(shape.Polygon{
			{X: 300, Y: 100}, {X: 340, Y: 140}, {X: 260, Y: 140},
		})

		frames++
		if cfg.Frames > 0 && frames >= cfg.Frames {
			win.Quit()
		}
	}
	log.Printf("Loop finished after %d frames", frames)
}

func describe(e event.Event) string {
	switch e.Type {
	case event.EventKeyDown, event.EventKeyUp:
		return fmt.Sprintf("%s %s", e.Type, e.Key)
	case event.EventMouseMove:
		return fmt.Sprintf("%s %d,%d", e.Type, e.X, e.Y)
	case event.EventMouseButtonDown, event.EventMouseButtonUp:
		return fmt.Sprintf("%s %d at %d,%d", e.Type, e.Button, e.X, e.Y)
	default:
		return string(e.Type)
	}
}

func writeSnapshot(path string, quality int, sb *soft.Backend) error {
	enc, err := encoder.ForPath(path, quality)
	if err != nil {
		return err
	}
	data, err := enc.Encode(sb.Frame())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
