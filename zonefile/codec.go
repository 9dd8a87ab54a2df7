package zonefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/ngrash/go-reltime/zone"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("zonefile: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: 1 << 20,
	}.DecMode()
	if err != nil {
		panic("zonefile: CBOR decoder initialization failed: " + err.Error())
	}
}

// Meta describes where a zone file came from.
type Meta struct {
	// Source names the input, such as "tzdata2024a" or a file name.
	Source string `cbor:"1,keyasint,omitempty"`
	// Comment is free text.
	Comment string `cbor:"2,keyasint,omitempty"`
}

type payload struct {
	Meta    Meta              `cbor:"1,keyasint"`
	Zones   []zoneRecord      `cbor:"2,keyasint"`
	Aliases map[string]string `cbor:"3,keyasint,omitempty"`
}

type zoneRecord struct {
	_      struct{} `cbor:",toarray"`
	Name   string
	Offset int32
	Rules  []ruleRecord
}

type ruleRecord struct {
	_           struct{} `cbor:",toarray"`
	From        int
	To          int
	HasDaylight bool
	Extra       int32
	Start       boundaryRecord
	End         boundaryRecord
}

type boundaryRecord struct {
	_      struct{} `cbor:",toarray"`
	Month  int
	Code   zone.BoundaryCode
	Day    int
	AuxDay int
	Time   int32
}

func toBoundaryRecord(b zone.Boundary) boundaryRecord {
	return boundaryRecord{Month: b.Month, Code: b.Code, Day: b.Day, AuxDay: b.AuxDay, Time: b.Time}
}

func (b boundaryRecord) boundary() zone.Boundary {
	return zone.Boundary{Month: b.Month, Code: b.Code, Day: b.Day, AuxDay: b.AuxDay, Time: b.Time}
}

// Encode writes reg and meta to w. Zones are written in order of their
// registry keys.
func Encode(w io.Writer, reg *zone.Registry, meta Meta) error {
	p := payload{Meta: meta, Aliases: reg.Aliases()}
	for _, name := range reg.Names() {
		tz, err := reg.Lookup(name)
		if err != nil {
			return err
		}
		zr := zoneRecord{Name: tz.Name, Offset: tz.Offset, Rules: make([]ruleRecord, 0, len(tz.Rules))}
		for _, r := range tz.Rules {
			zr.Rules = append(zr.Rules, ruleRecord{
				From:        r.From,
				To:          r.To,
				HasDaylight: r.HasDaylight,
				Extra:       r.Extra,
				Start:       toBoundaryRecord(r.Start),
				End:         toBoundaryRecord(r.End),
			})
		}
		p.Zones = append(p.Zones, zr)
	}

	data, err := encMode.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if len(data) > MaxPayload {
		return fmt.Errorf("payload of %d octets exceeds %d", len(data), MaxPayload)
	}
	h := Header{Version: V1, Length: uint32(len(data)), Digest: blake3.Sum256(data)}
	if err := h.Write(w); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

// ReadPayload reads the header and the checked payload from r.
func ReadPayload(r io.Reader) (Header, []byte, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return h, nil, err
	}
	data := make([]byte, h.Length)
	if _, err := io.ReadFull(r, data); err != nil {
		return h, nil, fmt.Errorf("read payload: %w", err)
	}
	if blake3.Sum256(data) != h.Digest {
		return h, nil, ErrChecksum
	}
	return h, data, nil
}

// Decode reads a registry from r. Every zone is validated.
func Decode(r io.Reader) (*zone.Registry, Meta, error) {
	_, data, err := ReadPayload(r)
	if err != nil {
		return nil, Meta{}, err
	}
	var p payload
	if err := decMode.Unmarshal(data, &p); err != nil {
		return nil, Meta{}, fmt.Errorf("%w: decode payload: %w", ErrFormat, err)
	}

	reg := zone.NewRegistry()
	var errs []error
	for _, zr := range p.Zones {
		tz := zone.TimeZone{Name: zr.Name, Offset: zr.Offset}
		for _, rr := range zr.Rules {
			tz.Rules = append(tz.Rules, zone.DstRule{
				From:        rr.From,
				To:          rr.To,
				HasDaylight: rr.HasDaylight,
				Extra:       rr.Extra,
				Start:       rr.Start.boundary(),
				End:         rr.End.boundary(),
			})
		}
		if err := zone.Validate(tz); err != nil {
			errs = append(errs, fmt.Errorf("zone %s: %w", tz.Name, err))
			continue
		}
		reg.Add(tz)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, Meta{}, err
	}
	for _, name := range slices.Sorted(maps.Keys(p.Aliases)) {
		reg.Alias(name, p.Aliases[name])
	}
	return reg, p.Meta, nil
}

// DecodeBytes is Decode on an in-memory file.
func DecodeBytes(b []byte) (*zone.Registry, Meta, error) {
	return Decode(bytes.NewReader(b))
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) of the
// payload of the zone file read from r.
func Diagnose(r io.Reader) (Header, string, error) {
	h, data, err := ReadPayload(r)
	if err != nil {
		return h, "", err
	}
	diag, err := cbor.Diagnose(data)
	return h, diag, err
}
