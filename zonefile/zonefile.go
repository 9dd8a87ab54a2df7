// Package zonefile reads and writes compiled zone registries.
//
// A zone file is a fixed header followed by a CBOR payload:
//
//	+---------------+---+---------------+-------------------------------+
//	|  magic    (4) |ver|  length   (4) |  BLAKE3-256 of payload  (32)  |
//	+---------------+---+---------------+-------------------------------+
//	|  payload                  (length)                                |
//	+-------------------------------------------------------------------+
//
// The payload uses CBOR Core Deterministic Encoding (RFC 8949 §4.2), so the
// same registry always produces the same bytes.
package zonefile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// All multi-octet integers are big-endian.
var order = binary.BigEndian

// Magic is the four-octet ASCII sequence "RTZ1" that identifies a zone file.
var Magic = [4]byte{'R', 'T', 'Z', '1'}

// Version identifies the payload layout.
type Version byte

// V1 is the only payload layout.
const V1 Version = 1

func (v Version) String() string {
	if v == V1 {
		return "V1 (0x01)"
	}
	return fmt.Sprintf("<undefined version (%d)>", v)
}

// MaxPayload bounds the payload length a reader accepts.
const MaxPayload = 16 << 20

var (
	// ErrFormat is returned for input that is not a zone file.
	ErrFormat = errors.New("zonefile: invalid format")
	// ErrChecksum is returned when the payload does not match its digest.
	ErrChecksum = errors.New("zonefile: checksum mismatch")
)

// Header is the header of a zone file, after the magic.
type Header struct {
	Version Version
	// Length is the number of payload octets following the header.
	Length uint32
	// Digest is the BLAKE3-256 hash of the payload.
	Digest [32]byte
}

// HeaderSize is the size of the magic and Header in octets.
const HeaderSize = len(Magic) + 1 + 4 + 32

// Write writes the magic and the Header to w.
func (h Header) Write(w io.Writer) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	return binary.Write(w, order, h)
}

// ReadHeader reads the magic and the Header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return h, fmt.Errorf("reading magic: %w", err)
	}
	if !bytes.Equal(magic, Magic[:]) {
		return h, fmt.Errorf("%w: magic %q", ErrFormat, magic)
	}
	if err := binary.Read(r, order, &h); err != nil {
		return h, fmt.Errorf("reading header: %w", err)
	}
	if h.Version != V1 {
		return h, fmt.Errorf("%w: unsupported version %v", ErrFormat, h.Version)
	}
	if h.Length > MaxPayload {
		return h, fmt.Errorf("%w: payload of %d octets exceeds %d", ErrFormat, h.Length, MaxPayload)
	}
	return h, nil
}
