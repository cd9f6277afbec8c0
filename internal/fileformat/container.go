// Package fileformat implements the .spmb bundle: a single file holding every
// array and descriptor of a dataset, optionally compressed per section and
// protected by a rolling xxh3 checksum index.
//
// Layout: magic(8) | version,count,reserved (u32 x3) | TOC entries
// (id u32, offset u64, size u64, flags u32) | sections aligned to 4096 bytes.
package fileformat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
	lz4 "github.com/pierrec/lz4/v4"
)

var magic = [8]byte{'S', 'P', 'M', 'B', 0, 0, 0, 0}

const (
	version      = 1
	sectionAlign = 4096

	// TypeMeta is the JSON section that names the other sections.
	TypeMeta uint32 = 1
	// FirstData is the id of the first file section.
	FirstData uint32 = 16
)

// Section compression flags.
const (
	FlagCompZSTD uint32 = 1 << 0
	FlagCompLZ4  uint32 = 1 << 1
)

var ErrNotBundle = errors.New("fileformat: not a bundle file")

type section struct {
	TypeID uint32
	Data   []byte
	Flags  uint32
}

// Writer collects sections and lays them out on Write.
type Writer struct {
	sections []section
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) AddSection(t uint32, data []byte, flags uint32) {
	w.sections = append(w.sections, section{TypeID: t, Data: data, Flags: flags})
}

// encoder compresses sections for one Write call. The zstd encoder is built
// on first use and shared by every zstd section.
type encoder struct {
	zstd *zstd.Encoder
}

func (e *encoder) encode(flags uint32, b []byte) ([]byte, error) {
	switch {
	case flags&FlagCompZSTD != 0:
		if e.zstd == nil {
			enc, err := zstd.NewWriter(nil)
			if err != nil {
				return nil, err
			}
			e.zstd = enc
		}
		return e.zstd.EncodeAll(b, make([]byte, 0, len(b)/2)), nil
	case flags&FlagCompLZ4 != 0:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(b); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return b, nil
}

func (e *encoder) close() {
	if e.zstd != nil {
		e.zstd.Close()
	}
}

func alignUp(x, a int64) int64 {
	r := x % a
	if r == 0 {
		return x
	}
	return x + (a - r)
}

type tocEntry struct {
	TypeID uint32
	Offset uint64
	Size   uint64
	Flags  uint32
}

const tocEntrySize = 4 + 8 + 8 + 4

// Write compresses each section according to its flags and writes the bundle
// to path.
func (w *Writer) Write(path string) error {
	var enc encoder
	defer enc.close()
	payloads := make([][]byte, len(w.sections))
	for i, s := range w.sections {
		data, err := enc.encode(s.Flags, s.Data)
		if err != nil {
			return fmt.Errorf("fileformat: encode section %d: %w", s.TypeID, err)
		}
		payloads[i] = data
	}

	recs := make([]tocEntry, len(w.sections))
	offset := alignUp(int64(len(magic)+12+tocEntrySize*len(w.sections)), sectionAlign)
	for i, s := range w.sections {
		recs[i] = tocEntry{TypeID: s.TypeID, Offset: uint64(offset), Size: uint64(len(payloads[i])), Flags: s.Flags}
		offset = alignUp(offset+int64(len(payloads[i])), sectionAlign)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(magic[:]); err != nil {
		return err
	}
	hdr := struct{ Ver, Num, Res uint32 }{version, uint32(len(w.sections)), 0}
	if err := binary.Write(f, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	for _, r := range recs {
		if err := binary.Write(f, binary.LittleEndian, &r); err != nil {
			return err
		}
	}
	var end int64
	for i, r := range recs {
		if _, err := f.WriteAt(payloads[i], int64(r.Offset)); err != nil {
			return err
		}
		end = max(end, int64(r.Offset+r.Size))
	}
	// empty trailing sections still have to lie inside the file
	if err := f.Truncate(max(end, int64(len(magic)+12+tocEntrySize*len(recs)))); err != nil {
		return err
	}
	return f.Close()
}

// Reader gives random access to the sections of a bundle. It is safe for
// concurrent use.
type Reader struct {
	f    *os.File
	size int64
	TOC  []tocEntry

	decOnce sync.Once
	dec     *zstd.Decoder
	decErr  error
}

// Open reads the header and TOC of the bundle at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var head [8]byte
	if _, err := io.ReadFull(f, head[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNotBundle)
	}
	if head != magic {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNotBundle)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	var hdr struct{ Ver, Num, Res uint32 }
	if err := binary.Read(f, binary.LittleEndian, &hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w: %v", path, ErrNotBundle, err)
	}
	if hdr.Ver != version {
		f.Close()
		return nil, fmt.Errorf("fileformat: %s: unsupported version %d", path, hdr.Ver)
	}
	if room := st.Size() - int64(len(magic)+12); int64(hdr.Num) > room/tocEntrySize {
		f.Close()
		return nil, fmt.Errorf("%s: %w: %d TOC entries do not fit %d bytes", path, ErrNotBundle, hdr.Num, st.Size())
	}
	r := &Reader{f: f, size: st.Size(), TOC: make([]tocEntry, hdr.Num)}
	for i := range r.TOC {
		if err := binary.Read(f, binary.LittleEndian, &r.TOC[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w: %v", path, ErrNotBundle, err)
		}
		if err := r.check(r.TOC[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return r, nil
}

func (r *Reader) Close() error {
	if r.dec != nil {
		r.dec.Close()
	}
	return r.f.Close()
}

// check rejects entries that point outside the file.
func (r *Reader) check(e tocEntry) error {
	if e.Offset > uint64(r.size) || e.Size > uint64(r.size)-e.Offset {
		return fmt.Errorf("%w: section %d at %d+%d exceeds file size %d", ErrNotBundle, e.TypeID, e.Offset, e.Size, r.size)
	}
	return nil
}

func (r *Reader) decoder() (*zstd.Decoder, error) {
	r.decOnce.Do(func() { r.dec, r.decErr = zstd.NewReader(nil) })
	return r.dec, r.decErr
}

func (r *Reader) decode(flags uint32, b []byte) ([]byte, error) {
	switch {
	case flags&FlagCompZSTD != 0:
		dec, err := r.decoder()
		if err != nil {
			return nil, err
		}
		return dec.DecodeAll(b, nil)
	case flags&FlagCompLZ4 != 0:
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, lz4.NewReader(bytes.NewReader(b))); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return b, nil
}

func (r *Reader) entry(typeID uint32) (tocEntry, bool) {
	for _, e := range r.TOC {
		if e.TypeID == typeID {
			return e, true
		}
	}
	return tocEntry{}, false
}

// Section returns the stored (possibly compressed) bytes of a section.
func (r *Reader) Section(typeID uint32) ([]byte, error) {
	e, ok := r.entry(typeID)
	if !ok {
		return nil, fmt.Errorf("fileformat: section %d not found", typeID)
	}
	if err := r.check(e); err != nil {
		return nil, err
	}
	buf := make([]byte, e.Size)
	if _, err := r.f.ReadAt(buf, int64(e.Offset)); err != nil {
		return nil, fmt.Errorf("fileformat: read section %d: %w", typeID, err)
	}
	return buf, nil
}

// SectionUncompressed returns a section's payload after undoing its
// compression flag.
func (r *Reader) SectionUncompressed(typeID uint32) ([]byte, error) {
	e, ok := r.entry(typeID)
	if !ok {
		return nil, fmt.Errorf("fileformat: section %d not found", typeID)
	}
	buf, err := r.Section(typeID)
	if err != nil {
		return nil, err
	}
	out, err := r.decode(e.Flags, buf)
	if err != nil {
		return nil, fmt.Errorf("fileformat: decompress section %d: %w", typeID, err)
	}
	return out, nil
}
