// Package codec centralizes state encoding for checkpoints.
//
// Checkpoint files are self-describing: the header records the codec name,
// and Load selects the codec by that name. Changing the default codec never
// invalidates existing files.
package codec

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Default is the codec used for newly written checkpoints.
var Default Codec = GoJSON{}
