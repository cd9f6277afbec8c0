package fileformat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"

	xxh3 "github.com/zeebo/xxh3"
)

// DefaultChunk is the checksum chunk size used by Pack.
const DefaultChunk = 1 << 20

var (
	ErrNoFile   = errors.New("fileformat: file not in bundle")
	ErrChecksum = errors.New("fileformat: checksum mismatch")
)

// FileEntry maps a dataset-relative path to the section holding its bytes.
type FileEntry struct {
	Path    string `json:"path"`
	Section uint32 `json:"section"`
	Size    int64  `json:"size"`
}

// Checksum is the rolling hash index of one uncompressed section.
type Checksum struct {
	Algo      string   `json:"algo"`
	ChunkSize int      `json:"chunk_size"`
	Count     int      `json:"count"`
	HashesHex []string `json:"hashes_hex"`
}

// Meta is the JSON content of the TypeMeta section.
type Meta struct {
	FormatVersion int                 `json:"format_version"`
	Files         []FileEntry         `json:"files"`
	ChecksumIndex map[string]Checksum `json:"checksum_index"`
}

// RollXXH3 hashes data in chunk-sized pieces.
func RollXXH3(data []byte, chunk int) []uint64 {
	hashes := make([]uint64, 0, (len(data)+chunk-1)/chunk)
	for i := 0; i < len(data); i += chunk {
		end := min(i+chunk, len(data))
		hashes = append(hashes, xxh3.Hash(data[i:end]))
	}
	return hashes
}

func checksumOf(data []byte, chunk int) Checksum {
	hs := RollXXH3(data, chunk)
	hex := make([]string, len(hs))
	for i, h := range hs {
		hex[i] = fmt.Sprintf("%016x", h)
	}
	return Checksum{Algo: "xxh3-64", ChunkSize: chunk, Count: len(hs), HashesHex: hex}
}

// CodecFlags maps a codec name to section flags.
func CodecFlags(codec string) (uint32, error) {
	switch codec {
	case "zstd":
		return FlagCompZSTD, nil
	case "lz4":
		return FlagCompLZ4, nil
	case "none", "":
		return 0, nil
	}
	return 0, fmt.Errorf("fileformat: unknown codec %q (want zstd, lz4 or none)", codec)
}

// Pack stores every regular file below dir in a bundle at out. Files become
// sections in lexical path order, each compressed with flags.
func Pack(dir, out string, flags uint32) (*Meta, error) {
	meta := &Meta{FormatVersion: 1, ChecksumIndex: map[string]Checksum{}}
	w := NewWriter()
	next := FirstData
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		meta.Files = append(meta.Files, FileEntry{Path: filepath.ToSlash(rel), Section: next, Size: int64(len(data))})
		meta.ChecksumIndex[strconv.FormatUint(uint64(next), 10)] = checksumOf(data, DefaultChunk)
		w.AddSection(next, data, flags)
		next++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fileformat: pack %s: %w", dir, err)
	}
	mb, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	w.sections = append([]section{{TypeID: TypeMeta, Data: mb}}, w.sections...)
	if err := w.Write(out); err != nil {
		return nil, fmt.Errorf("fileformat: write %s: %w", out, err)
	}
	return meta, nil
}

// Bundle is an open bundle addressed by dataset-relative paths.
type Bundle struct {
	r     *Reader
	Meta  Meta
	files map[string]FileEntry
}

// OpenBundle opens path and decodes its META section.
func OpenBundle(path string) (*Bundle, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	mb, err := r.SectionUncompressed(TypeMeta)
	if err != nil {
		r.Close()
		return nil, err
	}
	b := &Bundle{r: r, files: map[string]FileEntry{}}
	if err := json.Unmarshal(mb, &b.Meta); err != nil {
		r.Close()
		return nil, fmt.Errorf("fileformat: %s: bad META: %w", path, err)
	}
	for _, f := range b.Meta.Files {
		b.files[f.Path] = f
	}
	return b, nil
}

func (b *Bundle) Close() error { return b.r.Close() }

// ReadFile returns the uncompressed content stored for a slash-separated
// dataset-relative path. It is safe for concurrent use.
func (b *Bundle) ReadFile(name string) ([]byte, error) {
	f, ok := b.files[path.Clean(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoFile, name)
	}
	return b.r.SectionUncompressed(f.Section)
}

// Unpack writes every file of the bundle below dir.
func (b *Bundle) Unpack(dir string) error {
	for _, f := range b.Meta.Files {
		data, err := b.ReadFile(f.Path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Problem describes one failed check found by Verify.
type Problem struct {
	Path  string
	Chunk int // -1 when the whole section is affected
	Msg   string
}

func (p Problem) String() string {
	if p.Chunk < 0 {
		return fmt.Sprintf("%s: %s", p.Path, p.Msg)
	}
	return fmt.Sprintf("%s: chunk %d %s", p.Path, p.Chunk, p.Msg)
}

// Verify recomputes the checksum index of every file section. It returns the
// problems found and ErrChecksum when there is at least one.
func (b *Bundle) Verify() ([]Problem, error) {
	var probs []Problem
	for _, f := range b.Meta.Files {
		want, ok := b.Meta.ChecksumIndex[strconv.FormatUint(uint64(f.Section), 10)]
		if !ok {
			probs = append(probs, Problem{Path: f.Path, Chunk: -1, Msg: "missing checksum"})
			continue
		}
		if want.ChunkSize <= 0 {
			probs = append(probs, Problem{Path: f.Path, Chunk: -1, Msg: fmt.Sprintf("bad chunk size %d", want.ChunkSize)})
			continue
		}
		data, err := b.ReadFile(f.Path)
		if err != nil {
			probs = append(probs, Problem{Path: f.Path, Chunk: -1, Msg: err.Error()})
			continue
		}
		if int64(len(data)) != f.Size {
			probs = append(probs, Problem{Path: f.Path, Chunk: -1, Msg: fmt.Sprintf("size %d, want %d", len(data), f.Size)})
		}
		have := RollXXH3(data, want.ChunkSize)
		if len(have) != len(want.HashesHex) {
			probs = append(probs, Problem{Path: f.Path, Chunk: -1, Msg: fmt.Sprintf("chunk count %d, want %d", len(have), len(want.HashesHex))})
			continue
		}
		for i, h := range have {
			var x uint64
			if _, err := fmt.Sscanf(want.HashesHex[i], "%x", &x); err != nil || x != h {
				probs = append(probs, Problem{Path: f.Path, Chunk: i, Msg: "mismatch"})
			}
		}
	}
	if len(probs) > 0 {
		return probs, fmt.Errorf("%w: %d problem(s)", ErrChecksum, len(probs))
	}
	return nil, nil
}
