package bundle

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/chainnet/internal/model"
	"github.com/born-ml/chainnet/internal/stream"
)

// NewHeader builds the header for plan.
func NewHeader(plan *model.Plan) Header {
	totals := make(map[string]int, len(plan.Totals))
	for kind, n := range plan.Totals {
		totals[kind.String()] = n
	}
	return Header{
		FormatVersion:   FormatVersion,
		ChainnetVersion: ChainnetVersion,
		BundleID:        uuid.NewString(),
		ModelName:       plan.Name,
		Classes:         plan.Classes,
		Scale:           plan.Scale.String(),
		MaxChunkLen:     plan.MaxChunkLen,
		CreatedAt:       time.Now().UTC(),
		LayerCount:      len(plan.Layers),
		ChunkCount:      len(plan.Chunks),
		Totals:          totals,
	}
}

// Write writes plan as a .cnet bundle to w.
func Write(w io.Writer, plan *model.Plan) error {
	return WriteWithHeader(w, NewHeader(plan), plan.Blobs(), plan.Chunks)
}

// WriteFile writes plan as a .cnet bundle to path.
func WriteFile(path string, plan *model.Plan) error {
	//nolint:gosec // G304: bundle path comes from the command line
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(f, plan); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteWithHeader writes a bundle with a caller-built header. The header's
// counts are overwritten from layers and chunks.
func WriteWithHeader(w io.Writer, header Header, layers [][]byte, chunks []stream.Chunk) error {
	header.LayerCount = len(layers)
	header.ChunkCount = len(chunks)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	payload, err := encodePayload(layers, chunks)
	if err != nil {
		return err
	}
	checksum := ComputeChecksum(payload)

	// Write magic bytes
	if _, err := io.WriteString(w, MagicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}

	// Write version
	if err := binary.Write(w, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}

	// Write header size
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}

	// Write header JSON
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	if _, err := w.Write(checksum[:]); err != nil {
		return fmt.Errorf("failed to write checksum: %w", err)
	}
	return nil
}

func encodePayload(layers [][]byte, chunks []stream.Chunk) ([]byte, error) {
	var buf []byte
	for _, blob := range layers {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(blob)))
		buf = append(buf, blob...)
	}
	for i, c := range chunks {
		if c.Kind < 0 || c.Kind > 0xff {
			return nil, fmt.Errorf("chunk %d: kind %d does not fit in a byte", i, int(c.Kind))
		}
		buf = append(buf, byte(c.Kind))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(c.Instance))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(c.Offset))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.Scalars)))
		for _, s := range c.Scalars {
			buf = binary.LittleEndian.AppendUint64(buf, uint64(s))
		}
	}
	return buf, nil
}
