// mapshot renders a world overview to a PNG file, either from a raw
// seed or from a world stored in the server's database.
package main

import (
	"flag"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/FurryFrags/unstable-sandbox/internal/persistence/worlddb"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/overview"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/terrain"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/tuning"
)

func main() {
	var (
		seed       = flag.Int64("seed", 0, "world seed (ignored when -world is set)")
		worldID    = flag.Int64("world", 0, "world id to read from the database")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: ./configs/tuning.yaml)")
		px         = flag.Int("px", 0, "image side in pixels (default: world size)")
		out        = flag.String("out", "map.png", "output path")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[mapshot] ", log.LstdFlags)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join("configs", "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	s := *seed
	if *worldID != 0 {
		store, err := worlddb.Open(filepath.Join(*dataDir, "worlds.db"))
		if err != nil {
			logger.Fatalf("open world db: %v", err)
		}
		w, err := store.GetWorld(*worldID)
		_ = store.Close()
		if err != nil {
			logger.Fatalf("world %d: %v", *worldID, err)
		}
		s = w.Seed
		logger.Printf("world %d %q seed=%d", w.ID, w.Name, w.Seed)
	}

	size := *px
	if size <= 0 {
		size = tune.WorldSize
	}

	p := terrain.DefaultParams()
	p.WorldSize = tune.WorldSize
	p.MaxHeight = tune.MaxHeight
	p.SeaLevel = tune.SeaLevel
	img := overview.BuildImage(terrain.NewField(s, p), size)

	f, err := os.Create(*out)
	if err != nil {
		logger.Fatalf("create %s: %v", *out, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		logger.Fatalf("encode png: %v", err)
	}
	logger.Printf("wrote %s (%dx%d, seed %d)", *out, size, size, s)
}
