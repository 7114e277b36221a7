// Package ws serves viewer sessions over websocket: one HELLO/WELCOME
// handshake, then FRAME input in and STATE/CHUNK traffic out.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FurryFrags/unstable-sandbox/internal/persistence/worlddb"
	"github.com/FurryFrags/unstable-sandbox/internal/protocol"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/engine"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/tuning"
)

const defaultWorldName = "New World"

type Server struct {
	tune  tuning.Tuning
	store *worlddb.Store
	log   *log.Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[*engine.Session]struct{}
}

func NewServer(tune tuning.Tuning, store *worlddb.Store, logger *log.Logger) *Server {
	return &Server{
		tune:     tune,
		store:    store,
		log:      logger,
		sessions: make(map[*engine.Session]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Stats aggregates live session metrics for /metrics.
type Stats struct {
	Sessions     int
	LoadedChunks int
	BuiltChunks  uint64
	DroppedMsgs  uint64
}

func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{Sessions: len(s.sessions)}
	for sess := range s.sessions {
		m := sess.Metrics()
		st.LoadedChunks += m.LoadedChunks
		st.BuiltChunks += m.BuiltChunks
		st.DroppedMsgs += m.DroppedMsgs
	}
	return st
}

func (s *Server) track(sess *engine.Session) {
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(sess *engine.Session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(conn)
		if sess == nil {
			return
		}
		s.track(sess)
		defer s.untrack(sess)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go sess.Run(ctx)

		// Server-side replies (world lists, pins) share the writer with
		// session traffic; gorilla allows a single concurrent writer.
		reply := make(chan []byte, 16)

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-sess.Out():
					if !ok {
						return
					}
					if !writeRaw(conn, b) {
						cancel()
						return
					}
				case b := <-reply:
					if !writeRaw(conn, b) {
						cancel()
						return
					}
				}
			}
		}()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				s.sendError(reply, protocol.ErrProtoBadRequest, "not json")
				continue
			}
			s.dispatch(sess, reply, base.Type, msg)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) *engine.Session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return nil
	}
	if hello.ClientName == "" {
		hello.ClientName = "viewer"
	}

	world, err := s.resolveWorld(hello.WorldID)
	if err != nil {
		closeWith(conn, "world unavailable")
		s.log.Printf("handshake world: %v", err)
		return nil
	}

	sess := engine.NewSession(s.tune, world, s.log)
	if err := writeJSON(conn, sess.WelcomeFor()); err != nil {
		return nil
	}
	pins, err := s.store.ListPins(world.ID)
	if err != nil {
		s.log.Printf("list pins: %v", err)
		pins = nil
	}
	if err := writeJSON(conn, pinsMsg(pins)); err != nil {
		return nil
	}
	s.log.Printf("session start: client=%q world=%d seed=%d", hello.ClientName, world.ID, world.Seed)
	return sess
}

// resolveWorld picks the requested world, falls back to the most
// recently opened one, and creates a default world for a fresh store.
func (s *Server) resolveWorld(id int64) (worlddb.World, error) {
	if id != 0 {
		w, err := s.store.GetWorld(id)
		if err == nil {
			_ = s.store.TouchWorld(w.ID)
		}
		return w, err
	}
	w, err := s.store.MostRecentWorld()
	if errors.Is(err, worlddb.ErrNotFound) {
		return s.store.CreateWorld(defaultWorldName, rand.Int63())
	}
	if err == nil {
		_ = s.store.TouchWorld(w.ID)
	}
	return w, err
}

func pinsMsg(pins []worlddb.Pin) protocol.PinsMsg {
	msg := protocol.PinsMsg{Type: protocol.TypePins, Pins: []protocol.Pin{}}
	for _, p := range pins {
		msg.Pins = append(msg.Pins, protocol.Pin{Name: p.Name, X: p.X, Z: p.Z})
	}
	return msg
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func writeRaw(conn *websocket.Conn, b []byte) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b) == nil
}
