package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello      = "HELLO"
	TypeWelcome    = "WELCOME"
	TypeFrame      = "FRAME"
	TypeState      = "STATE"
	TypeChunk      = "CHUNK"
	TypeChunkState = "CHUNKSTATE"
	TypeEvict      = "EVICT"
	TypeError      = "ERROR"

	TypeListWorlds  = "LIST_WORLDS"
	TypeWorlds      = "WORLDS"
	TypeCreateWorld = "CREATE_WORLD"
	TypeOpenWorld   = "OPEN_WORLD"
	TypeSetPin      = "SET_PIN"
	TypeRemovePin   = "REMOVE_PIN"
	TypePins        = "PINS"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
