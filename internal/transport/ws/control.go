package ws

import (
	"encoding/json"
	"errors"
	"math/rand"
	"strings"

	"github.com/FurryFrags/unstable-sandbox/internal/persistence/worlddb"
	"github.com/FurryFrags/unstable-sandbox/internal/protocol"
	"github.com/FurryFrags/unstable-sandbox/internal/sim/engine"
)

// dispatch routes one decoded client message. FRAME goes straight to
// the session; everything else is world and pin management answered
// on the reply channel.
func (s *Server) dispatch(sess *engine.Session, reply chan<- []byte, typ string, msg []byte) {
	switch typ {
	case protocol.TypeFrame:
		var f protocol.FrameMsg
		if err := json.Unmarshal(msg, &f); err != nil {
			s.sendError(reply, protocol.ErrProtoBadRequest, "bad FRAME")
			return
		}
		sess.Input(f)

	case protocol.TypeListWorlds:
		worlds, err := s.store.ListWorlds()
		if err != nil {
			s.sendError(reply, protocol.ErrInternal, "list worlds")
			return
		}
		out := protocol.WorldsMsg{Type: protocol.TypeWorlds, Worlds: []protocol.WorldRef{}}
		for _, w := range worlds {
			out.Worlds = append(out.Worlds, protocol.WorldRef{ID: w.ID, Name: w.Name, Seed: w.Seed})
		}
		s.send(reply, out)

	case protocol.TypeCreateWorld:
		var req protocol.CreateWorldMsg
		if err := json.Unmarshal(msg, &req); err != nil || strings.TrimSpace(req.Name) == "" {
			s.sendError(reply, protocol.ErrBadRequest, "world name required")
			return
		}
		seed := req.Seed
		if seed == 0 {
			seed = rand.Int63()
		}
		w, err := s.store.CreateWorld(strings.TrimSpace(req.Name), seed)
		if err != nil {
			s.sendError(reply, protocol.ErrWorldExists, "world name taken")
			return
		}
		s.openWorld(sess, reply, w)

	case protocol.TypeOpenWorld:
		var req protocol.OpenWorldMsg
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendError(reply, protocol.ErrProtoBadRequest, "bad OPEN_WORLD")
			return
		}
		w, err := s.store.GetWorld(req.WorldID)
		if errors.Is(err, worlddb.ErrNotFound) {
			s.sendError(reply, protocol.ErrWorldNotFound, "no such world")
			return
		}
		if err != nil {
			s.sendError(reply, protocol.ErrInternal, "open world")
			return
		}
		s.openWorld(sess, reply, w)

	case protocol.TypeSetPin:
		var req protocol.SetPinMsg
		if err := json.Unmarshal(msg, &req); err != nil || strings.TrimSpace(req.Name) == "" {
			s.sendError(reply, protocol.ErrBadRequest, "pin name required")
			return
		}
		ws := s.tune.WorldSize
		if req.X < 0 || req.Z < 0 || req.X >= ws || req.Z >= ws {
			s.sendError(reply, protocol.ErrBadRequest, "pin outside world")
			return
		}
		worldID := sess.World().ID
		if err := s.store.SetPin(worldID, worlddb.Pin{Name: strings.TrimSpace(req.Name), X: req.X, Z: req.Z}); err != nil {
			s.sendError(reply, protocol.ErrInternal, "set pin")
			return
		}
		s.sendPins(reply, worldID)

	case protocol.TypeRemovePin:
		var req protocol.RemovePinMsg
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendError(reply, protocol.ErrProtoBadRequest, "bad REMOVE_PIN")
			return
		}
		worldID := sess.World().ID
		err := s.store.RemovePin(worldID, req.Name)
		if errors.Is(err, worlddb.ErrNotFound) {
			s.sendError(reply, protocol.ErrPinNotFound, "no such pin")
			return
		}
		if err != nil {
			s.sendError(reply, protocol.ErrInternal, "remove pin")
			return
		}
		s.sendPins(reply, worldID)

	default:
		s.sendError(reply, protocol.ErrProtoBadRequest, "unknown type "+typ)
	}
}

// openWorld marks the world current and swaps the session onto it.
// The session emits the fresh WELCOME from its own goroutine; pins
// follow on the reply channel.
func (s *Server) openWorld(sess *engine.Session, reply chan<- []byte, w worlddb.World) {
	_ = s.store.TouchWorld(w.ID)
	sess.SwitchWorld(w)
	s.sendPins(reply, w.ID)
}

func (s *Server) sendPins(reply chan<- []byte, worldID int64) {
	pins, err := s.store.ListPins(worldID)
	if err != nil {
		s.sendError(reply, protocol.ErrInternal, "list pins")
		return
	}
	s.send(reply, pinsMsg(pins))
}

func (s *Server) send(reply chan<- []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Printf("marshal reply: %v", err)
		return
	}
	select {
	case reply <- b:
	default:
		s.log.Printf("reply channel full, dropping %d bytes", len(b))
	}
}

func (s *Server) sendError(reply chan<- []byte, code, msg string) {
	s.send(reply, protocol.ErrorMsg{Type: protocol.TypeError, Code: code, Message: msg})
}
