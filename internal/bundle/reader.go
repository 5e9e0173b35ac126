package bundle

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/chainnet/internal/fixed"
	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/stream"
)

// Bundle is a decoded .cnet file.
type Bundle struct {
	Header Header
	Scale  fixed.Scale
	Layers [][]byte
	Chunks []stream.Chunk
}

// ReadFile reads a bundle from path.
func ReadFile(path string) (*Bundle, error) {
	//nolint:gosec // G304: bundle path comes from the command line
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a bundle and verifies its checksum and counts.
func Read(r io.Reader) (*Bundle, error) {
	// Read magic bytes
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, ErrInvalidMagic
	}

	// Read version
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	// Read header size
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}

	// Read header JSON
	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	b := &Bundle{}
	if err := json.Unmarshal(headerBytes, &b.Header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	scale, err := fixed.ParseScale(b.Header.Scale)
	if err != nil {
		return nil, &ValidationError{Field: "scale", Details: err.Error()}
	}
	b.Scale = scale

	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	if len(rest) < ChecksumSize {
		return nil, ErrTruncated
	}
	payload := rest[:len(rest)-ChecksumSize]
	var stored [32]byte
	copy(stored[:], rest[len(rest)-ChecksumSize:])
	if err := ValidateChecksum(ComputeChecksum(payload), stored); err != nil {
		return nil, err
	}

	if err := b.decodePayload(payload); err != nil {
		return nil, err
	}
	if err := ValidateHeader(&b.Header, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) decodePayload(payload []byte) error {
	if err := validateCounts(&b.Header, len(payload)); err != nil {
		return err
	}
	r := bytes.NewReader(payload)

	b.Layers = make([][]byte, 0, b.Header.LayerCount)
	for i := range b.Header.LayerCount {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return fmt.Errorf("layer %d: %w", i, ErrTruncated)
		}
		if int64(n) > int64(r.Len()) {
			return fmt.Errorf("layer %d: %w", i, ErrTruncated)
		}
		blob := make([]byte, n)
		if _, err := io.ReadFull(r, blob); err != nil {
			return fmt.Errorf("layer %d: %w", i, ErrTruncated)
		}
		b.Layers = append(b.Layers, blob)
	}

	b.Chunks = make([]stream.Chunk, 0, b.Header.ChunkCount)
	for i := range b.Header.ChunkCount {
		var head struct {
			Kind     uint8
			Instance uint32
			Offset   uint32
			N        uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
			return fmt.Errorf("chunk %d: %w", i, ErrTruncated)
		}
		if int64(head.N)*8 > int64(r.Len()) {
			return fmt.Errorf("chunk %d: %w", i, ErrTruncated)
		}
		scalars := make([]int64, head.N)
		if err := binary.Read(r, binary.LittleEndian, scalars); err != nil {
			return fmt.Errorf("chunk %d: %w", i, ErrTruncated)
		}
		b.Chunks = append(b.Chunks, stream.Chunk{
			Kind:     layer.Kind(head.Kind),
			Instance: int(head.Instance),
			Offset:   int(head.Offset),
			Scalars:  scalars,
		})
	}

	if r.Len() != 0 {
		return &ValidationError{Field: "payload", Details: fmt.Sprintf("%d trailing bytes", r.Len())}
	}
	return nil
}
