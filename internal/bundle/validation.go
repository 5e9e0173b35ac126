package bundle

import (
	"fmt"
)

// Smallest encodings of a layer record (length prefix) and a chunk record
// (kind, instance, offset, length).
const (
	minLayerRecord = 4
	minChunkRecord = 1 + 4 + 4 + 4
)

// validateCounts rejects header counts that the payload cannot hold.
func validateCounts(h *Header, payloadLen int) error {
	if h.LayerCount < 0 {
		return &ValidationError{Field: "layer_count", Details: fmt.Sprintf("negative count %d", h.LayerCount)}
	}
	if h.ChunkCount < 0 {
		return &ValidationError{Field: "chunk_count", Details: fmt.Sprintf("negative count %d", h.ChunkCount)}
	}
	if h.LayerCount > payloadLen/minLayerRecord {
		return &ValidationError{
			Field:   "layer_count",
			Details: fmt.Sprintf("%d layers do not fit in a %d byte payload", h.LayerCount, payloadLen),
		}
	}
	if rest := payloadLen - h.LayerCount*minLayerRecord; h.ChunkCount > rest/minChunkRecord {
		return &ValidationError{
			Field:   "chunk_count",
			Details: fmt.Sprintf("%d chunks do not fit in a %d byte payload", h.ChunkCount, payloadLen),
		}
	}
	return nil
}

// ValidateHeader checks the header against the decoded payload: chunk
// sizes must respect max_chunk_len and per-kind scalar totals must match.
func ValidateHeader(h *Header, b *Bundle) error {
	if h.FormatVersion != FormatVersion {
		return &ValidationError{Field: "format_version", Details: fmt.Sprintf("got %d", h.FormatVersion)}
	}

	totals := make(map[string]int)
	for i, c := range b.Chunks {
		if h.MaxChunkLen > 0 && len(c.Scalars) > h.MaxChunkLen {
			return &ValidationError{
				Field:   "max_chunk_len",
				Details: fmt.Sprintf("chunk %d holds %d scalars, limit %d", i, len(c.Scalars), h.MaxChunkLen),
			}
		}
		totals[c.Kind.String()] += len(c.Scalars)
	}

	for kind, want := range h.Totals {
		if totals[kind] != want {
			return &ValidationError{Field: "totals", Details: fmt.Sprintf("%s: header says %d scalars, payload holds %d", kind, want, totals[kind])}
		}
	}
	for kind, got := range totals {
		if _, ok := h.Totals[kind]; !ok {
			return &ValidationError{Field: "totals", Details: fmt.Sprintf("%s: %d scalars not listed in header", kind, got)}
		}
	}
	return nil
}
