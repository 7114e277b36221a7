package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ClientName      string            `json:"client_name"`
	Capabilities    HelloCapabilities `json:"capabilities,omitempty"`
	WorldID         int64             `json:"world_id,omitempty"` // 0 = most recent world
}

type HelloCapabilities struct {
	GreedyMesh bool `json:"greedy_mesh,omitempty"`
	Zstd       bool `json:"zstd,omitempty"`
}

// WELCOME (server -> client), also re-sent after OPEN_WORLD.
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	World           WorldRef       `json:"world"`
	WorldParams     WorldParams    `json:"world_params"`
	Materials       []MaterialInfo `json:"materials"`
}

type WorldRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Seed int64  `json:"seed"`
}

type WorldParams struct {
	Seed         int64 `json:"seed"`
	WorldSize    int   `json:"world_size"`
	ChunkSize    int   `json:"chunk_size"`
	MaxHeight    int   `json:"max_height"`
	SeaLevel     int   `json:"sea_level"`
	RenderRadius int   `json:"render_radius"`
	TickRateHz   int   `json:"tick_rate_hz"`
	DayTicks     int   `json:"day_ticks"`
}

type MaterialInfo struct {
	Name        string  `json:"name"`
	Color       string  `json:"color"` // #rrggbb
	Alpha       float64 `json:"alpha"`
	Translucent bool    `json:"translucent,omitempty"`
}

// FRAME (client -> server): one frame of input.
type FrameMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version,omitempty"`
	Forward         float64     `json:"forward"`
	Strafe          float64     `json:"strafe"`
	Jump            bool        `json:"jump,omitempty"`
	Descend         bool        `json:"descend,omitempty"`
	DYaw            float64     `json:"dyaw,omitempty"`
	DPitch          float64     `json:"dpitch,omitempty"`
	ViewProj        *[16]float64 `json:"view_proj,omitempty"`
}

// STATE (server -> client): per-tick player and clock state.
type StateMsg struct {
	Type      string     `json:"type"`
	Tick      uint64     `json:"tick"`
	Pos       [3]float64 `json:"pos"`
	Yaw       float64    `json:"yaw"`
	Pitch     float64    `json:"pitch"`
	Flying    bool       `json:"flying,omitempty"`
	Grounded  bool       `json:"grounded,omitempty"`
	TimeOfDay float64    `json:"time_of_day"` // [0,1), 0 is dawn
	Loaded    int        `json:"loaded_chunks"`
	Pending   int        `json:"pending_chunks"`
}

// CHUNK (server -> client): geometry for one freshly built chunk.
type ChunkMsg struct {
	Type   string        `json:"type"`
	CX     int           `json:"cx"`
	CZ     int           `json:"cz"`
	Origin [3]float64    `json:"origin"`
	Meshes []MeshPayload `json:"meshes"`
}

// MeshPayload carries one material's triangles, zstd-compressed
// little-endian float32s in base64.
type MeshPayload struct {
	Material    string `json:"material"`
	VertexCount int    `json:"vertex_count"`
	Encoding    string `json:"encoding"` // "zstd"
	Positions   string `json:"positions"`
	Normals     string `json:"normals"`
}

// CHUNKSTATE (server -> client): visibility and shadow flags for
// resident chunks whose flags changed this tick.
type ChunkStateMsg struct {
	Type   string       `json:"type"`
	Chunks []ChunkFlags `json:"chunks"`
}

type ChunkFlags struct {
	CX         int  `json:"cx"`
	CZ         int  `json:"cz"`
	Visible    bool `json:"visible"`
	CastShadow bool `json:"cast_shadow"`
}

// EVICT (server -> client): chunks the client should drop.
type EvictMsg struct {
	Type   string     `json:"type"`
	Chunks []ChunkKey `json:"chunks"`
}

type ChunkKey struct {
	CX int `json:"cx"`
	CZ int `json:"cz"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// World management, all client -> server unless noted.

type ListWorldsMsg struct {
	Type string `json:"type"`
}

// WORLDS (server -> client)
type WorldsMsg struct {
	Type   string     `json:"type"`
	Worlds []WorldRef `json:"worlds"`
}

type CreateWorldMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Seed int64  `json:"seed,omitempty"` // 0 = server picks
}

type OpenWorldMsg struct {
	Type    string `json:"type"`
	WorldID int64  `json:"world_id"`
}

// Map pins.

type SetPinMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
	X    int    `json:"x"`
	Z    int    `json:"z"`
}

type RemovePinMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// PINS (server -> client): full pin list after any change.
type PinsMsg struct {
	Type string `json:"type"`
	Pins []Pin  `json:"pins"`
}

type Pin struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Z    int    `json:"z"`
}
