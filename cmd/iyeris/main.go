package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/BurntToasters/IYERIS-sub000/internal/app"
	"github.com/BurntToasters/IYERIS-sub000/internal/column"
	"github.com/BurntToasters/IYERIS-sub000/internal/config"
	"github.com/BurntToasters/IYERIS-sub000/internal/provider"
	"github.com/BurntToasters/IYERIS-sub000/internal/render"
	"github.com/BurntToasters/IYERIS-sub000/internal/watch"
)

func main() {
	var (
		columnsView = flag.Bool("columns", false, "Render the Miller-column view instead of a flat listing")
		showHidden  = flag.Bool("hidden", false, "Show hidden entries")
		sortKey     = flag.String("sort", "", "Sort key: name | date | size | type")
		follow      = flag.Bool("follow", false, "Keep running and re-render when the directory changes")
		query       = flag.String("search", "", "Filter the listing with a query, e.g. 'ext:go size:>1MB'")
		homeView    = flag.Bool("home", false, "Show the home view (standard directories and mounted volumes)")
		configPath  = flag.String("config", "", "Config file path (default ~/.config/iyeris/config.json)")
	)
	flag.Parse()

	path := flag.Arg(0)
	if path == "" {
		var err error
		if path, err = os.Getwd(); err != nil {
			log.Fatal(err)
		}
	}

	mgr := config.NewManager()
	var err error
	if *configPath != "" {
		err = mgr.LoadFrom(*configPath)
	} else {
		err = mgr.Load()
	}
	if err != nil {
		log.Printf("config: %v (using defaults)", err)
	}
	cfg := mgr.Get()
	if *showHidden {
		cfg.View.ShowHidden = true
	}
	if *sortKey != "" {
		cfg.View.DefaultSort = *sortKey
	}

	renderer := newTermRenderer(os.Stdout, int(os.Stdout.Fd()))
	ctrl := app.NewController(cfg, app.Deps{
		Directory: provider.NewLocal(cfg.View.StreamChunkSize),
		Media:     provider.NewLocalMedia(cfg.Thumbnail.FFmpegPath),
		Renderer:  renderer,
		// A terminal has no scroll viewport; everything observed is
		// visible, and paint work runs inline.
		Tracker:   render.AlwaysVisible{},
		Scheduler: render.SyncScheduler{},
	})
	defer ctrl.Close()

	ctrl.OnError(func(p string, err error) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	})
	ctrl.OnWarning(func(count int) {
		fmt.Fprintf(os.Stderr, "note: %d entries, rendering may take a moment\n", count)
	})

	// Register before Navigate: the listing may land immediately.
	loaded := make(chan struct{}, 1)
	ctrl.OnLoaded(func(p string, token int64) {
		select {
		case loaded <- struct{}{}:
		default:
		}
	})

	if *homeView {
		ctrl.ShowHome()
		for _, p := range provider.Places() {
			fmt.Printf("%-16s %s\n", p.Label, p.Path)
		}
		return
	}

	if *columnsView {
		ctrl.Navigate(path)
		waitLoaded(loaded)
		ctrl.Columns().OnCommit(printPanes)
		if err := ctrl.RenderColumnView(); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctrl.Navigate(path)
	waitLoaded(loaded)

	if *query != "" {
		ctrl.Search(*query)
		return
	}

	if !*follow {
		return
	}

	if !cfg.Watcher.Enabled {
		log.Fatal("-follow requires watcher.enabled in config")
	}
	w, err := watch.New(cfg.Watcher.Debounce.Std())
	if err != nil {
		log.Fatal(err)
	}
	defer w.Close()
	if err := w.SwitchTo(path); err != nil {
		log.Fatal(err)
	}
	for range w.Notify() {
		ctrl.Refresh()
	}
}

// waitLoaded blocks until the controller commits a listing, or a generous
// deadline passes (network filesystems can be slow).
func waitLoaded(loaded <-chan struct{}) {
	select {
	case <-loaded:
	case <-time.After(time.Minute):
		fmt.Fprintln(os.Stderr, "timed out waiting for listing")
	}
}

func printPanes(panes []column.Pane) {
	for _, p := range panes {
		marker := " "
		if p.Active {
			marker = "*"
		}
		fmt.Printf("%s pane %d: %s (%d entries)\n", marker, p.Index, p.Path, len(p.Entries))
		if p.Err != nil {
			fmt.Printf("    error: %v\n", p.Err)
		}
	}
}
