package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/arbiter"
	"github.com/ayusman/mudra/internal/coords"
	"github.com/ayusman/mudra/internal/replicated"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

// defaultViz is the visualization instance key a fresh surface starts on.
const defaultViz = "main"

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cameraID := flag.Int("camera", 0, "camera device id")
	dbPath := flag.String("db", "", "database path (default ~/.mudra/mudra.db)")
	flag.Parse()

	fmt.Println("Mudra - Collaborative Gesture Surface")

	if *dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		dbDir := filepath.Join(homeDir, ".mudra")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		*dbPath = filepath.Join(dbDir, "mudra.db")
	}

	st, err := store.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// The shared document, mirrored into the store and replicated to peers
	// through the sync endpoint.
	doc := replicated.NewDoc("")
	doc.OnChange(store.NewBrushPersister(st).Observer())

	arb := arbiter.New(doc, defaultViz, uuid.NewString(), nil)

	a := app.New(app.Config{
		CameraID: *cameraID,
		Mapper: coords.Mapper{
			SurfaceW:  1920,
			SurfaceH:  1080,
			VideoRect: coords.Rect{X: 0, Y: 0, W: 1920, H: 1080},
			VideoW:    640,
			VideoH:    480,
		},
		Shared: arb,
	})
	a.MountVisualization(nil, arb.Apply)

	session := &store.Session{ID: uuid.NewString(), SiteID: doc.Site()}
	if err := st.Sessions().Create(session); err != nil {
		log.Printf("Failed to record session: %v", err)
	}

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       a,
		Doc:       doc,
		Arbiter:   arb,
	})
	defer srv.Close()

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	a.SetEnabled(true)

	tr := tray.New()
	tr.OnToggle(a.SetEnabled)
	tr.OnSettings(func() {
		log.Printf("Surface available at http://localhost%s", *addr)
	})
	tr.OnQuit(func() {
		a.Stop()
		if err := st.Sessions().End(session.ID); err != nil {
			log.Printf("Failed to close session: %v", err)
		}
	})

	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			tr.SetHandCount(len(a.Detections()))
		}
	}()

	// Blocks until quit.
	tr.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
