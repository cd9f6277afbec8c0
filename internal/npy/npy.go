// Package npy reads and writes one-dimensional NumPy .npy arrays.
//
// File layout: magic "\x93NUMPY", major, minor, header length (u16 for v1,
// u32 for v2/v3), a Python dict literal header padded to 64 bytes, then the
// raw little-endian elements.
package npy

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Elem is the set of element types this package handles.
type Elem interface {
	int32 | int64 | float32 | float64
}

var (
	// ErrNotNPY means the magic string is missing.
	ErrNotNPY = errors.New("npy: not a .npy file")
	// ErrUnsupported covers valid .npy files this package does not handle:
	// big-endian or unknown dtypes, Fortran order, true multi-dimensional
	// shapes, or a dtype other than the one requested.
	ErrUnsupported = errors.New("npy: unsupported array")
)

var magic = []byte("\x93NUMPY")

const (
	align = 64
	// headers longer than this are rejected before allocation
	maxHeader = 1 << 20
	// elements read per step when the payload size is unknown
	readStep = 1 << 16
)

// Header is the decoded array description.
type Header struct {
	Major        byte
	Descr        string
	FortranOrder bool
	Shape        []int
}

// Len is the element count implied by Shape.
func (h Header) Len() int {
	n := 1
	for _, d := range h.Shape {
		n *= d
	}
	return n
}

// Descr returns the dtype string for T.
func Descr[T Elem]() string {
	var zero T
	switch any(zero).(type) {
	case int32:
		return "<i4"
	case int64:
		return "<i8"
	case float32:
		return "<f4"
	default:
		return "<f8"
	}
}

// ElemSize is the byte width of a dtype string, or 0 if unknown.
func ElemSize(descr string) int {
	switch descr {
	case "<i4", "<f4":
		return 4
	case "<i8", "<f8":
		return 8
	}
	return 0
}

// ReadHeader consumes the preamble and header of r.
func ReadHeader(r io.Reader) (Header, error) {
	var pre [8]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return Header{}, fmt.Errorf("npy: read preamble: %w", err)
	}
	if !bytes.Equal(pre[:6], magic) {
		return Header{}, ErrNotNPY
	}
	h := Header{Major: pre[6]}
	var hlen int
	switch h.Major {
	case 1:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Header{}, fmt.Errorf("npy: read header length: %w", err)
		}
		hlen = int(binary.LittleEndian.Uint16(b[:]))
	case 2, 3:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Header{}, fmt.Errorf("npy: read header length: %w", err)
		}
		hlen = int(binary.LittleEndian.Uint32(b[:]))
	default:
		return Header{}, fmt.Errorf("%w: format version %d.%d", ErrUnsupported, pre[6], pre[7])
	}
	if hlen > maxHeader {
		return Header{}, fmt.Errorf("%w: header length %d", ErrUnsupported, hlen)
	}
	raw := make([]byte, hlen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return Header{}, fmt.Errorf("npy: read header: %w", err)
	}
	if err := parseDict(string(raw), &h); err != nil {
		return Header{}, err
	}
	if h.FortranOrder {
		return Header{}, fmt.Errorf("%w: fortran order", ErrUnsupported)
	}
	nonUnit := 0
	for _, d := range h.Shape {
		if d != 1 {
			nonUnit++
		}
	}
	if nonUnit > 1 {
		return Header{}, fmt.Errorf("%w: shape %v is not a vector", ErrUnsupported, h.Shape)
	}
	if _, ok := h.Bytes(); !ok {
		return Header{}, fmt.Errorf("%w: shape %v overflows", ErrUnsupported, h.Shape)
	}
	return h, nil
}

// Bytes is the payload size implied by Shape and Descr. ok is false when it
// does not fit an int.
func (h Header) Bytes() (n int, ok bool) {
	size := ElemSize(h.Descr)
	if size == 0 {
		return 0, false
	}
	n = size
	for _, d := range h.Shape {
		if d != 0 && n > math.MaxInt/d {
			return 0, false
		}
		n *= d
	}
	return n, true
}

// parseDict extracts descr, fortran_order and shape from the header literal,
// e.g. {'descr': '<f8', 'fortran_order': False, 'shape': (3,), }
func parseDict(s string, h *Header) error {
	val := func(key string) (string, bool) {
		for _, q := range []string{"'", `"`} {
			k := q + key + q
			i := strings.Index(s, k)
			if i < 0 {
				continue
			}
			rest := strings.TrimSpace(s[i+len(k):])
			if !strings.HasPrefix(rest, ":") {
				continue
			}
			return strings.TrimSpace(rest[1:]), true
		}
		return "", false
	}

	d, ok := val("descr")
	if !ok || len(d) < 2 || (d[0] != '\'' && d[0] != '"') {
		return fmt.Errorf("npy: header without descr: %q", s)
	}
	end := strings.IndexByte(d[1:], d[0])
	if end < 0 {
		return fmt.Errorf("npy: unterminated descr: %q", s)
	}
	h.Descr = d[1 : end+1]
	if ElemSize(h.Descr) == 0 {
		return fmt.Errorf("%w: dtype %q", ErrUnsupported, h.Descr)
	}

	f, ok := val("fortran_order")
	if !ok {
		return fmt.Errorf("npy: header without fortran_order: %q", s)
	}
	h.FortranOrder = strings.HasPrefix(f, "True")

	sh, ok := val("shape")
	if !ok || !strings.HasPrefix(sh, "(") {
		return fmt.Errorf("npy: header without shape: %q", s)
	}
	rp := strings.IndexByte(sh, ')')
	if rp < 0 {
		return fmt.Errorf("npy: unterminated shape: %q", s)
	}
	h.Shape = h.Shape[:0]
	for _, part := range strings.Split(sh[1:rp], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.TrimSuffix(part, "L")
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return fmt.Errorf("npy: bad shape %q", sh[:rp+1])
		}
		h.Shape = append(h.Shape, n)
	}
	return nil
}

func header[T Elem](r io.Reader) (Header, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Header{}, err
	}
	if want := Descr[T](); h.Descr != want {
		return Header{}, fmt.Errorf("%w: dtype %s, want %s", ErrUnsupported, h.Descr, want)
	}
	return h, nil
}

// Read decodes a vector of T from r. The stored dtype must be exactly T.
// Elements are read in bounded steps, so a header that promises more data
// than r holds fails with an error instead of a large allocation.
func Read[T Elem](r io.Reader) ([]T, error) {
	h, err := header[T](r)
	if err != nil {
		return nil, err
	}
	n := h.Len()
	out := make([]T, 0, min(n, readStep))
	buf := make([]T, min(n, readStep))
	for len(out) < n {
		k := min(n-len(out), readStep)
		if err := binary.Read(r, binary.LittleEndian, buf[:k]); err != nil {
			return nil, fmt.Errorf("npy: read element %d of %d: %w", len(out), n, err)
		}
		out = append(out, buf[:k]...)
	}
	return out, nil
}

// Decode is Read over an in-memory file. The declared shape must fit the
// bytes that follow the header.
func Decode[T Elem](b []byte) ([]T, error) {
	r := bytes.NewReader(b)
	h, err := header[T](r)
	if err != nil {
		return nil, err
	}
	if size, _ := h.Bytes(); size > r.Len() {
		return nil, fmt.Errorf("%w: shape %v needs %d bytes, %d remain", ErrUnsupported, h.Shape, size, r.Len())
	}
	out := make([]T, h.Len())
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("npy: read %d elements: %w", len(out), err)
	}
	return out, nil
}

// ReadFile reads a vector of T from path.
func ReadFile[T Elem](path string) ([]T, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := Decode[T](b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Write encodes data as a 1-D .npy array. The header is padded so the data
// starts on a 64-byte boundary; version 2.0 is used only when the header does
// not fit a u16 length.
func Write[T Elem](w io.Writer, data []T) error {
	dict := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%d,), }", Descr[T](), len(data))
	major := byte(1)
	pre := len(magic) + 2 + 2
	if len(dict)+1+pre > 65535 {
		major = 2
		pre += 2
	}
	total := pre + len(dict) + 1
	pad := (align - total%align) % align
	hdr := dict + strings.Repeat(" ", pad) + "\n"

	var b bytes.Buffer
	b.Write(magic)
	b.WriteByte(major)
	b.WriteByte(0)
	if major == 1 {
		binary.Write(&b, binary.LittleEndian, uint16(len(hdr)))
	} else {
		binary.Write(&b, binary.LittleEndian, uint32(len(hdr)))
	}
	b.WriteString(hdr)
	if _, err := w.Write(b.Bytes()); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, data)
}

// Encode returns the .npy bytes for data.
func Encode[T Elem](data []T) []byte {
	var b bytes.Buffer
	// writes to a bytes.Buffer do not fail
	_ = Write(&b, data)
	return b.Bytes()
}

// WriteFile writes data to path, replacing any existing file.
func WriteFile[T Elem](path string, data []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := Write(bw, data); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
