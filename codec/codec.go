// Copyright (C) 2025 zajel-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// Package codec provides the canonical byte-encoding primitives used to
// build signing bytes for manifests, chunk payloads and upstream payloads,
// plus the base64/hex helpers shared across the crypto core.
//
// Canonicalisation rule: fields are written in a fixed declared order;
// strings and byte slices are length-prefixed (4-byte big-endian count of
// bytes); sequences are prefixed with a 4-byte big-endian element count.
// Callers decide which fields participate — in particular, the manifest's
// `signature` field is never written through this encoder.
package codec

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/zajel/zajel/zerr"
)

// Writer accumulates canonical signing bytes field by field.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty canonical writer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 256)}
}

// String appends a length-prefixed UTF-8 string.
func (w *Writer) String(s string) *Writer {
	return w.Bytes([]byte(s))
}

// Bytes appends a length-prefixed byte slice.
func (w *Writer) Bytes(b []byte) *Writer {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	w.buf = append(w.buf, lenBuf[:]...)
	w.buf = append(w.buf, b...)
	return w
}

// Uint64 appends a fixed-width 8-byte big-endian integer.
func (w *Writer) Uint64(v uint64) *Writer {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

// Uint32 appends a fixed-width 4-byte big-endian integer.
func (w *Writer) Uint32(v uint32) *Writer {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

// Count begins a length-prefixed sequence of n elements; the caller
// follows with n calls that append each element's own fields.
func (w *Writer) Count(n int) *Writer {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(n))
	w.buf = append(w.buf, b[:]...)
	return w
}

// Out returns the accumulated canonical encoding. Named distinctly from
// the Bytes field-builder method above to keep the builder chain readable
// at call sites (w.String(...).Bytes(...).Out()).
func (w *Writer) Out() []byte {
	return w.buf
}

// Reader decodes a buffer written by Writer, field by field, in the same
// order it was written.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential canonical-field decoding.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, zerr.New("codec.reader", zerr.Malformed, nil)
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

// Bytes reads one length-prefixed byte slice.
func (r *Reader) Bytes() ([]byte, error) {
	lenBuf, err := r.take(4)
	if err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf)
	return r.take(int(n))
}

// String reads one length-prefixed string.
func (r *Reader) String() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Uint64 reads one fixed-width 8-byte big-endian integer.
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// Uint32 reads one fixed-width 4-byte big-endian integer.
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Count reads a sequence length prefix written by Writer.Count.
func (r *Reader) Count() (int, error) {
	n, err := r.Uint32()
	return int(n), err
}

// B64Encode encodes standard base64 (with padding), matching the `base64
// of` fields specified throughout the data model.
func B64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// B64Decode decodes standard base64, reporting zerr.BadEncoding on
// malformed input per spec.
func B64Decode(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, zerr.New("codec.b64decode", zerr.BadEncoding, err)
	}
	return b, nil
}

// HexEncodeLower returns the lowercase hex encoding of b.
func HexEncodeLower(b []byte) string {
	return hex.EncodeToString(b)
}

// HexDecode decodes a hex string, case-insensitively, reporting
// zerr.BadEncoding on malformed input.
func HexDecode(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return nil, zerr.New("codec.hexdecode", zerr.BadEncoding, err)
	}
	return b, nil
}

// ToJSON marshals v for external transports. JSON forms never participate
// in signing; only the canonical Writer encoding above does.
func ToJSON(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, zerr.New("codec.tojson", zerr.BadEncoding, err)
	}
	return b, nil
}

// FromJSON unmarshals data into v.
func FromJSON(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return zerr.New("codec.fromjson", zerr.BadEncoding, err)
	}
	return nil
}
