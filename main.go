// Package main provides the entry point for the lane detector.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gilbertgonz/lane-detection/internal/config"
	"github.com/gilbertgonz/lane-detection/internal/display"
	"github.com/gilbertgonz/lane-detection/internal/pipeline"
	"github.com/gilbertgonz/lane-detection/internal/source"
	"github.com/gilbertgonz/lane-detection/internal/version"
)

const appTitle = "Lane Detection"

type options struct {
	video    string
	config   string
	watch    bool
	ui       string
	hold     bool
	logEvery int
}

func main() {
	var opts options
	flag.StringVar(&opts.video, "video", "assets/dashcam.mp4", "Video file, stream URL, or directory of still frames")
	flag.StringVar(&opts.config, "config", "", "JSON parameter file (defaults are used for omitted fields)")
	flag.BoolVar(&opts.watch, "watch", false, "Reload -config while running when the file changes")
	flag.StringVar(&opts.ui, "ui", string(display.KindHighGUI), "Display surface: highgui, fyne or none")
	flag.BoolVar(&opts.hold, "hold", true, "Keep the last frame on screen after the stream ends")
	flag.IntVar(&opts.logEvery, "log-every", -1, "Frames between progress lines (overrides config when >= 0)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(appTitle, version.String())
		return
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s %s", appTitle, version.String())

	if err := run(opts); err != nil {
		if errors.Is(err, source.ErrSourceUnavailable) {
			log.Printf("No image: %v", err)
		} else {
			log.Print(err)
		}
		os.Exit(1)
	}
}

// run owns every OpenCV and window resource, so all of them are released
// before main decides the exit status.
func run(opts options) error {
	params := config.DefaultParams()
	if opts.config != "" {
		p, err := config.LoadParams(opts.config)
		if err != nil {
			return fmt.Errorf("load config %q: %w", opts.config, err)
		}
		params = p
	}
	if opts.logEvery >= 0 {
		params.LogEvery = opts.logEvery
	}

	kind, err := display.ParseKind(opts.ui)
	if err != nil {
		return err
	}

	src, err := source.Open(opts.video)
	if err != nil {
		return err
	}
	defer src.Close()

	pl, err := pipeline.New(params)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer pl.Close()

	if opts.watch && opts.config != "" {
		w := config.NewWatcher(opts.config, time.Second, func(p config.Params) {
			if opts.logEvery >= 0 {
				p.LogEvery = opts.logEvery
			}
			if err := pl.Update(p); err != nil {
				log.Printf("Config: %v", err)
			}
		})
		if w != nil {
			w.Start()
			defer w.Stop()
		}
	}

	surface, err := display.New(kind)
	if err != nil {
		return err
	}
	defer surface.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	play := func() error {
		stats, err := pl.Run(ctx, src, surface)
		log.Printf("Processed %d frames in %s (%.1f fps)", stats.Frames, stats.Elapsed.Round(time.Millisecond), stats.FPS())
		if err != nil {
			return err
		}
		if h, ok := surface.(display.Holder); ok && opts.hold && !stats.Stopped {
			h.Hold()
		}
		return nil
	}

	// Surfaces with their own event loop keep the main goroutine; the
	// pipeline runs beside them and closes the surface when done.
	loop, ok := surface.(display.MainLoop)
	if !ok {
		return play()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- play()
		surface.Close()
	}()
	loop.Main()
	stop()
	return <-errCh
}
