package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/FurryFrags/unstable-sandbox/internal/persistence/worlddb"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/overview"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/terrain"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/tuning"
	"github.com/FurryFrags/unstable-sandbox/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	store, err := worlddb.Open(filepath.Join(*dataDir, "worlds.db"))
	if err != nil {
		logger.Fatalf("open world db: %v", err)
	}
	defer store.Close()

	ctx, cancel := signalContext()
	defer cancel()

	wsServer := ws.NewServer(tune, store, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		st := wsServer.Stats()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP sandbox_sessions Connected viewer sessions.\n")
		fmt.Fprintf(rw, "# TYPE sandbox_sessions gauge\n")
		fmt.Fprintf(rw, "sandbox_sessions %d\n", st.Sessions)

		fmt.Fprintf(rw, "# HELP sandbox_loaded_chunks Resident chunks across sessions.\n")
		fmt.Fprintf(rw, "# TYPE sandbox_loaded_chunks gauge\n")
		fmt.Fprintf(rw, "sandbox_loaded_chunks %d\n", st.LoadedChunks)

		fmt.Fprintf(rw, "# HELP sandbox_built_chunks_total Chunks meshed since start.\n")
		fmt.Fprintf(rw, "# TYPE sandbox_built_chunks_total counter\n")
		fmt.Fprintf(rw, "sandbox_built_chunks_total %d\n", st.BuiltChunks)

		fmt.Fprintf(rw, "# HELP sandbox_dropped_messages_total Outbound messages dropped on backpressure.\n")
		fmt.Fprintf(rw, "# TYPE sandbox_dropped_messages_total counter\n")
		fmt.Fprintf(rw, "sandbox_dropped_messages_total %d\n", st.DroppedMsgs)
	})
	mux.HandleFunc("/v1/map.png", mapHandler(tune, store, logger))
	mux.HandleFunc("/v1/ws", wsServer.Handler())

	if envBool("SANDBOX_ENABLE_PPROF_HTTP", false) {
		guard := func(h http.HandlerFunc) http.HandlerFunc {
			return func(rw http.ResponseWriter, r *http.Request) {
				if !isLoopbackRemote(r.RemoteAddr) {
					http.Error(rw, "forbidden", http.StatusForbidden)
					return
				}
				h(rw, r)
			}
		}
		mux.HandleFunc("/debug/pprof/", guard(pprof.Index))
		mux.HandleFunc("/debug/pprof/cmdline", guard(pprof.Cmdline))
		mux.HandleFunc("/debug/pprof/profile", guard(pprof.Profile))
		mux.HandleFunc("/debug/pprof/symbol", guard(pprof.Symbol))
		mux.HandleFunc("/debug/pprof/trace", guard(pprof.Trace))
		logger.Printf("pprof endpoints enabled (loopback only)")
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// mapHandler renders the overview for a stored world. The image is
// derived fresh from the seed on every request, so it never holds a
// reference into a live session.
func mapHandler(tune tuning.Tuning, store *worlddb.Store, logger *log.Logger) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.URL.Query().Get("world_id"), 10, 64)
		if err != nil {
			http.Error(rw, "world_id required", http.StatusBadRequest)
			return
		}
		w, err := store.GetWorld(id)
		if err != nil {
			http.Error(rw, "no such world", http.StatusNotFound)
			return
		}
		px := tune.WorldSize
		if v := r.URL.Query().Get("px"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 16 || n > 2048 {
				http.Error(rw, "bad px", http.StatusBadRequest)
				return
			}
			px = n
		}

		tp := terrain.DefaultParams()
		tp.WorldSize = tune.WorldSize
		tp.MaxHeight = tune.MaxHeight
		tp.SeaLevel = tune.SeaLevel
		img := overview.BuildImage(terrain.NewField(w.Seed, tp), px)

		rw.Header().Set("Content-Type", "image/png")
		if err := png.Encode(rw, img); err != nil {
			logger.Printf("encode map png: %v", err)
		}
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
