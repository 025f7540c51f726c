package flat

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

const (
	indexExt = ".index"
	docsExt  = ".docs"
	tmpExt   = ".tmp"

	formatVersion = 1
)

var magic = [8]byte{'P', 'D', 'F', 'C', 'V', 'E', 'C', 'S'}

// Payload meta keys.
const (
	metaDimension = "dimension"
	metaCount     = "count"
	metaSavedAt   = "saved_at"
)

// ErrCorrupt indicates the index artifacts cannot be read back.
var ErrCorrupt = errors.New("flat: corrupt index artifacts")

type header struct {
	Magic     [8]byte
	Version   uint32
	Dimension uint32
	Count     uint64
}

// Paths returns the vector and payload artifact paths inside dir.
func (idx *Index) Paths(dir string) (indexPath, docsPath string) {
	return filepath.Join(dir, idx.name+indexExt), filepath.Join(dir, idx.name+docsExt)
}

// Save writes both artifacts into dir.
func (idx *Index) Save(ctx context.Context, dir string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return ErrClosed
	}
	if idx.dimension == 0 {
		return fmt.Errorf("%w: index not initialised", domain.ErrInvalidInput)
	}
	if idx.openStore == nil {
		return fmt.Errorf("%w: no payload store configured", domain.ErrConfiguration)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	indexPath, docsPath := idx.Paths(dir)
	indexTmp, docsTmp := indexPath+tmpExt, docsPath+tmpExt
	_ = os.Remove(docsTmp)

	if err := idx.writeDocs(ctx, docsTmp); err != nil {
		_ = os.Remove(docsTmp)
		return err
	}
	if err := idx.writeVectors(indexTmp); err != nil {
		_ = os.Remove(docsTmp)
		_ = os.Remove(indexTmp)
		return err
	}
	if err := os.Rename(docsTmp, docsPath); err != nil {
		return fmt.Errorf("replacing payload file: %w", err)
	}
	if err := os.Rename(indexTmp, indexPath); err != nil {
		return fmt.Errorf("replacing index file: %w", err)
	}

	logger.Debug("Saved %d vectors (dim=%d) to %s", len(idx.entries), idx.dimension, indexPath)
	return nil
}

func (idx *Index) writeDocs(ctx context.Context, path string) error {
	store, err := idx.openStore(path)
	if err != nil {
		return fmt.Errorf("opening payload store: %w", err)
	}
	defer store.Close()

	chunks := make([]domain.TextChunk, len(idx.entries))
	for i, e := range idx.entries {
		chunks[i] = e.Chunk
	}
	if err := store.ReplaceAll(ctx, chunks); err != nil {
		return fmt.Errorf("saving payloads: %w", err)
	}
	meta := map[string]string{
		metaDimension: strconv.Itoa(idx.dimension),
		metaCount:     strconv.Itoa(len(idx.entries)),
		metaSavedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if err := store.SetMeta(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (idx *Index) writeVectors(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("creating index file: %w", err)
	}
	defer f.Close()

	crc := crc32.NewIEEE()
	w := bufio.NewWriter(io.MultiWriter(f, crc))

	h := header{
		Magic:     magic,
		Version:   formatVersion,
		Dimension: uint32(idx.dimension),
		Count:     uint64(len(idx.entries)),
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("writing index header: %w", err)
	}

	buf := make([]byte, 4*idx.dimension)
	for _, e := range idx.entries {
		for i, v := range e.Vector {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("writing vectors: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing vectors: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, crc.Sum32()); err != nil {
		return fmt.Errorf("writing checksum: %w", err)
	}
	return f.Sync()
}

// Load replaces the index with the artifacts in dir.
// Returns false without error when either artifact is missing.
func (idx *Index) Load(ctx context.Context, dir string) (bool, error) {
	indexPath, docsPath := idx.Paths(dir)
	for _, p := range []string{indexPath, docsPath} {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Debug("Index artifact %s not found", p)
				return false, nil
			}
			return false, fmt.Errorf("checking %s: %w", p, err)
		}
	}
	if idx.openStore == nil {
		return false, fmt.Errorf("%w: no payload store configured", domain.ErrConfiguration)
	}

	dimension, vectors, err := readVectors(indexPath)
	if err != nil {
		return false, err
	}

	store, err := idx.openStore(docsPath)
	if err != nil {
		return false, fmt.Errorf("opening payload store: %w", err)
	}
	defer store.Close()

	chunks, err := store.LoadAll(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if len(chunks) != len(vectors) {
		return false, fmt.Errorf("%w: %d vectors but %d payloads", ErrCorrupt, len(vectors), len(chunks))
	}
	if v, err := store.Meta(ctx, metaDimension); err == nil && v != "" && v != strconv.Itoa(dimension) {
		return false, fmt.Errorf("%w: payload dimension %s, vectors %d", ErrCorrupt, v, dimension)
	}

	entries := make([]domain.IndexedEntry, len(vectors))
	for i := range vectors {
		entries[i] = domain.IndexedEntry{Vector: vectors[i], Chunk: chunks[i], InsertionOrder: i}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return false, ErrClosed
	}
	idx.dimension = dimension
	idx.entries = entries

	logger.Debug("Loaded %d vectors (dim=%d) from %s", len(entries), dimension, indexPath)
	return true, nil
}

func readVectors(path string) (int, [][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, fmt.Errorf("reading index file: %w", err)
	}

	const headerSize = 8 + 4 + 4 + 8
	if len(data) < headerSize+4 {
		return 0, nil, fmt.Errorf("%w: index file too short", ErrCorrupt)
	}

	body, sum := data[:len(data)-4], binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(body) != sum {
		return 0, nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	var h header
	copy(h.Magic[:], body[:8])
	h.Version = binary.LittleEndian.Uint32(body[8:12])
	h.Dimension = binary.LittleEndian.Uint32(body[12:16])
	h.Count = binary.LittleEndian.Uint64(body[16:24])

	if h.Magic != magic {
		return 0, nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if h.Version != formatVersion {
		return 0, nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, h.Version)
	}
	if h.Dimension == 0 {
		return 0, nil, fmt.Errorf("%w: zero dimension", ErrCorrupt)
	}

	dim := int(h.Dimension)
	payload := body[headerSize:]
	if uint64(len(payload)) != h.Count*uint64(dim)*4 {
		return 0, nil, fmt.Errorf("%w: expected %d vectors of %d dimensions", ErrCorrupt, h.Count, dim)
	}

	vectors := make([][]float32, h.Count)
	for i := range vectors {
		vec := make([]float32, dim)
		off := i * dim * 4
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(payload[off+j*4:]))
		}
		vectors[i] = vec
	}
	return dim, vectors, nil
}
