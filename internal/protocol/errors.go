package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrVersionMismatch = "E_VERSION_MISMATCH"

	// World management.
	ErrWorldNotFound = "E_WORLD_NOT_FOUND"
	ErrWorldExists   = "E_WORLD_EXISTS"
	ErrPinNotFound   = "E_PIN_NOT_FOUND"

	// Everything else.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrVersionMismatch: {},
	ErrWorldNotFound:   {},
	ErrWorldExists:     {},
	ErrPinNotFound:     {},
	ErrBadRequest:      {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
