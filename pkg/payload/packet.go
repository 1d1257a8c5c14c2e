package payload

import (
	"encoding/binary"
	"fmt"
	"math"
)

// PacketSize is the fixed frame size in bytes.
const PacketSize = 23

// SyncHeader marks the start of every frame.
var SyncHeader = [4]byte{0xE7, 0x4B, 0x52, 0x5A}

// Frame byte offsets.
const (
	offCode   = 4
	offFields = 6
	offCRC    = 22
)

// Packet is one decoded frame: a verb code and four numeric fields.
// The fields carry motor speeds (port-forward, starboard-forward,
// port-aft, starboard-aft), or an error code in PFwd for ERROR frames.
type Packet struct {
	Code [2]byte
	PFwd float32
	SFwd float32
	PAft float32
	SAft float32
}

// New creates a packet for a known verb.
func New(v Verb, pfwd, sfwd, paft, saft float32) *Packet {
	return &Packet{Code: v.Code(), PFwd: pfwd, SFwd: sfwd, PAft: paft, SAft: saft}
}

// Verb looks up the verb for the raw code. The second return is false
// for codes outside the closed verb set.
func (p *Packet) Verb() (Verb, bool) {
	return VerbFromCode(p.Code)
}

// Fields returns the four numeric fields in frame order.
func (p *Packet) Fields() [4]float32 {
	return [4]float32{p.PFwd, p.SFwd, p.PAft, p.SAft}
}

// Bytes returns the encoded frame.
func (p *Packet) Bytes() []byte {
	b := make([]byte, PacketSize)
	copy(b, SyncHeader[:])
	b[offCode], b[offCode+1] = p.Code[0], p.Code[1]
	for i, f := range p.Fields() {
		binary.BigEndian.PutUint32(b[offFields+4*i:], math.Float32bits(f))
	}
	b[offCRC] = crc8(b[offCode:offCRC])
	return b
}

// FromBytes decodes a frame. It fails with ErrShortFrame, ErrBadSync
// or ErrBadChecksum; an unrecognized verb code is not a decode error,
// callers dispatch on Verb instead.
func FromBytes(b []byte) (*Packet, error) {
	if len(b) < PacketSize {
		return nil, ErrShortFrame
	}
	if b[0] != SyncHeader[0] || b[1] != SyncHeader[1] ||
		b[2] != SyncHeader[2] || b[3] != SyncHeader[3] {
		return nil, ErrBadSync
	}
	if crc8(b[offCode:offCRC]) != b[offCRC] {
		return nil, ErrBadChecksum
	}
	p := &Packet{Code: [2]byte{b[offCode], b[offCode+1]}}
	var fields [4]float32
	for i := range fields {
		fields[i] = math.Float32frombits(binary.BigEndian.Uint32(b[offFields+4*i:]))
	}
	p.PFwd, p.SFwd, p.PAft, p.SAft = fields[0], fields[1], fields[2], fields[3]
	return p, nil
}

// String implements fmt.Stringer.
func (p *Packet) String() string {
	name := string(p.Code[:])
	if v, ok := p.Verb(); ok {
		name = v.String()
	}
	return fmt.Sprintf("%s(%.2f, %.2f, %.2f, %.2f)", name, p.PFwd, p.SFwd, p.PAft, p.SAft)
}

// crc8 computes CRC-8 (polynomial 0x07, zero init) over p.
func crc8(p []byte) byte {
	var crc byte
	for _, b := range p {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
