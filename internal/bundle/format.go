package bundle

import (
	"time"
)

// Format constants.
const (
	MagicBytes    = "CNET"
	FormatVersion = 1
	ChecksumSize  = 32               // SHA-256 checksum size (32 bytes)
	MaxHeaderSize = 16 * 1024 * 1024 // 16MB - maximum header size
)

// ChainnetVersion is the version of chainnet writing bundles.
const ChainnetVersion = "0.1.0"

// Header is the JSON header of a .cnet file.
type Header struct {
	FormatVersion   int            `json:"format_version"`    // Version of the .cnet format
	ChainnetVersion string         `json:"chainnet_version"`  // Version of chainnet that wrote the file
	BundleID        string         `json:"bundle_id"`         // Random identifier of this bundle
	ModelName       string         `json:"model_name"`        // Model name from the description
	Classes         []string       `json:"classes,omitempty"` // Class labels, if any
	Scale           string         `json:"scale"`             // Fixed-point scale ("q32" or "e18")
	MaxChunkLen     int            `json:"max_chunk_len"`     // Upper bound on scalars per chunk
	CreatedAt       time.Time      `json:"created_at"`        // When the file was written
	LayerCount      int            `json:"layer_count"`       // Encoded layers in the payload
	ChunkCount      int            `json:"chunk_count"`       // Weight chunks in the payload
	Totals          map[string]int `json:"totals"`            // Weight scalars per layer kind
}
