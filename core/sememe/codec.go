package sememe

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/google/uuid"
)

// BlobHeaderSize is the fixed size of every cache blob header.
const BlobHeaderSize = 32

// FormatVersion is the current cache blob format version.
const FormatVersion uint16 = 1

var blobMagic = [4]byte{'S', 'M', 'D', 'B'}

// BlobKind identifies which structure a blob holds.
type BlobKind uint8

const (
	BlobGlossary BlobKind = iota + 1
	BlobHierarchy
	BlobSememes
	BlobParents
)

func (k BlobKind) String() string {
	switch k {
	case BlobGlossary:
		return "glossary"
	case BlobHierarchy:
		return "hierarchy"
	case BlobSememes:
		return "sememes"
	case BlobParents:
		return "parents"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// BlobHeader precedes every blob payload.
//
// Binary layout (32 bytes, little-endian):
//
//	Offset  Size  Field
//	0       4     magic    "SMDB"
//	4       2     version  (uint16)
//	6       1     kind     (uint8)
//	7       1     _reserved
//	8       16    build    (UUID shared by all blobs of one save)
//	24      4     length   (uint32) - payload bytes
//	28      4     checksum (uint32) - CRC32 (IEEE) of the payload
type BlobHeader struct {
	Version  uint16
	Kind     BlobKind
	Build    uuid.UUID
	Length   uint32
	Checksum uint32
}

// MarshalBinary encodes the header.
func (h *BlobHeader) MarshalBinary() ([]byte, error) {
	buf := make([]byte, BlobHeaderSize)
	copy(buf[0:4], blobMagic[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	buf[6] = byte(h.Kind)
	copy(buf[8:24], h.Build[:])
	binary.LittleEndian.PutUint32(buf[24:28], h.Length)
	binary.LittleEndian.PutUint32(buf[28:32], h.Checksum)
	return buf, nil
}

// UnmarshalBinary decodes and checks magic and version.
func (h *BlobHeader) UnmarshalBinary(data []byte) error {
	if len(data) != BlobHeaderSize {
		return ErrTruncated
	}
	if [4]byte(data[0:4]) != blobMagic {
		return ErrBadMagic
	}
	h.Version = binary.LittleEndian.Uint16(data[4:6])
	if h.Version != FormatVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	h.Kind = BlobKind(data[6])
	copy(h.Build[:], data[8:24])
	h.Length = binary.LittleEndian.Uint32(data[24:28])
	h.Checksum = binary.LittleEndian.Uint32(data[28:32])
	return nil
}

// encodeBlob frames payload with a header.
func encodeBlob(kind BlobKind, build uuid.UUID, payload []byte) ([]byte, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("%s payload too large: %d bytes", kind, len(payload))
	}
	h := BlobHeader{
		Version:  FormatVersion,
		Kind:     kind,
		Build:    build,
		Length:   uint32(len(payload)),
		Checksum: crc32.ChecksumIEEE(payload),
	}
	head, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(head, payload...), nil
}

// decodeBlob validates the frame and returns the header and payload.
func decodeBlob(want BlobKind, data []byte) (BlobHeader, []byte, error) {
	var h BlobHeader
	if len(data) < BlobHeaderSize {
		return h, nil, ErrTruncated
	}
	if err := h.UnmarshalBinary(data[:BlobHeaderSize]); err != nil {
		return h, nil, err
	}
	if h.Kind != want {
		return h, nil, fmt.Errorf("%w: got %s, want %s", ErrWrongBlobKind, h.Kind, want)
	}
	payload := data[BlobHeaderSize:]
	if uint64(len(payload)) != uint64(h.Length) {
		return h, nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrTruncated, len(payload), h.Length)
	}
	if crc32.ChecksumIEEE(payload) != h.Checksum {
		return h, nil, ErrChecksumMismatch
	}
	return h, payload, nil
}

// payloadWriter appends uvarint-prefixed values.
type payloadWriter struct {
	buf []byte
}

func (w *payloadWriter) uvarint(v uint64) {
	w.buf = binary.AppendUvarint(w.buf, v)
}

func (w *payloadWriter) varint(v int64) {
	w.buf = binary.AppendVarint(w.buf, v)
}

func (w *payloadWriter) str(s string) {
	w.uvarint(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// payloadReader consumes what payloadWriter produced. The first decoding
// failure sticks; callers check err once at the end.
type payloadReader struct {
	buf []byte
	err error
}

func (r *payloadReader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.buf)
	if n <= 0 {
		r.err = ErrTruncated
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

func (r *payloadReader) varint() int64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Varint(r.buf)
	if n <= 0 {
		r.err = ErrTruncated
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

// count reads a collection length, rejecting values that cannot fit in the
// remaining bytes (every element takes at least one byte).
func (r *payloadReader) count() int {
	n := r.uvarint()
	if r.err == nil && n > uint64(len(r.buf)) {
		r.err = ErrTruncated
		return 0
	}
	return int(n)
}

func (r *payloadReader) str() string {
	n := r.uvarint()
	if r.err != nil {
		return ""
	}
	if n > uint64(len(r.buf)) {
		r.err = ErrTruncated
		return ""
	}
	s := string(r.buf[:n])
	r.buf = r.buf[n:]
	return s
}

// finish reports trailing garbage as corruption.
func (r *payloadReader) finish() error {
	if r.err != nil {
		return r.err
	}
	if len(r.buf) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrInconsistent, len(r.buf))
	}
	return nil
}

func encodeSememes(reg *Registry) []byte {
	w := &payloadWriter{}
	w.uvarint(uint64(len(reg.toName)))
	for _, name := range reg.toName {
		w.str(name)
	}
	return w.buf
}

func decodeSememes(payload []byte) (*Registry, error) {
	r := &payloadReader{buf: payload}
	n := r.count()
	names := make([]string, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		names = append(names, r.str())
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return newRegistryFromNames(names)
}

func encodeHierarchy(records []HierarchyRecord) []byte {
	w := &payloadWriter{}
	w.uvarint(uint64(len(records)))
	for _, rec := range records {
		w.str(rec.Name)
		w.varint(int64(rec.Parent))
	}
	return w.buf
}

func decodeHierarchy(payload []byte) ([]HierarchyRecord, error) {
	r := &payloadReader{buf: payload}
	n := r.count()
	records := make([]HierarchyRecord, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		name := r.str()
		parent := r.varint()
		records = append(records, HierarchyRecord{Name: name, Parent: int(parent)})
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return records, nil
}

func encodeParents(m *ParentMap) []byte {
	w := &payloadWriter{}
	names := m.sortedNames()
	w.uvarint(uint64(len(names)))
	for _, name := range names {
		w.str(name)
		w.str(m.parents[name])
	}
	return w.buf
}

func decodeParents(payload []byte) (*ParentMap, error) {
	r := &payloadReader{buf: payload}
	n := r.count()
	parents := make(map[string]string, n)
	for i := 0; i < n && r.err == nil; i++ {
		name := r.str()
		parents[name] = r.str()
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	if len(parents) != n {
		return nil, fmt.Errorf("%w: duplicate parent entries", ErrInconsistent)
	}
	return &ParentMap{parents: parents}, nil
}

func encodeGlossary(g *Glossary) []byte {
	w := &payloadWriter{}
	w.uvarint(uint64(len(g.entries)))
	g.eachEntry(func(e GlossEntry) {
		w.str(e.Word)
		w.str(e.PartOfSpeech)
		w.uvarint(uint64(len(e.Sememes)))
		for _, s := range e.Sememes {
			w.str(s)
		}
	})
	return w.buf
}

func decodeGlossary(payload []byte) (*Glossary, error) {
	r := &payloadReader{buf: payload}
	g := NewGlossary()
	n := r.count()
	for i := 0; i < n && r.err == nil; i++ {
		e := GlossEntry{Word: r.str(), PartOfSpeech: r.str()}
		m := r.count()
		e.Sememes = make([]string, 0, m)
		for j := 0; j < m && r.err == nil; j++ {
			e.Sememes = append(e.Sememes, r.str())
		}
		g.Add(e)
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return g, nil
}
