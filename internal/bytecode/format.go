package bytecode

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Magic is the 8-byte file signature every serialized module begins with
// (spec §4.3).
var Magic = [8]byte{'O', 'T', 'T', 'E', 'R', 'B', 'C', 0}

// Version is the current wire-format version. Bumped whenever the CBOR
// payload's shape changes in a way older readers can't tolerate.
const Version uint32 = 1

const headerLen = 8 + 4 + 4 // magic + version + payload_length

// FormatError is the taxonomy of things that can go wrong decoding a
// module file (spec §4.3, surfaced through §7's error design).
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "bytecode: " + e.Reason }

var (
	// ErrUnexpectedEnd is returned when the input is shorter than its own
	// declared header or payload length.
	ErrUnexpectedEnd = &FormatError{Reason: "unexpected end of input"}
	// ErrInvalidMagic is returned when the leading 8 bytes don't match Magic.
	ErrInvalidMagic = &FormatError{Reason: "invalid magic bytes"}
)

// UnsupportedVersionError is returned when the file declares a version
// this build doesn't know how to decode.
type UnsupportedVersionError struct {
	Version uint32
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("bytecode: unsupported version %d", e.Version)
}

// Encode serializes m as "OTTERBC\0" + version (u32 LE) + payload_length
// (u32 LE) + CBOR(m) (spec §4.3).
func Encode(m *Module) ([]byte, error) {
	payload, err := cbor.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("bytecode: encode payload: %w", err)
	}

	out := make([]byte, 0, headerLen+len(payload))
	out = append(out, Magic[:]...)

	var versionBuf [4]byte
	binary.LittleEndian.PutUint32(versionBuf[:], Version)
	out = append(out, versionBuf[:]...)

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	out = append(out, lenBuf[:]...)

	out = append(out, payload...)
	return out, nil
}

// Decode parses a module file produced by Encode.
func Decode(data []byte) (*Module, error) {
	if len(data) < headerLen {
		return nil, ErrUnexpectedEnd
	}
	if [8]byte(data[0:8]) != Magic {
		return nil, ErrInvalidMagic
	}

	version := binary.LittleEndian.Uint32(data[8:12])
	if version != Version {
		return nil, &UnsupportedVersionError{Version: version}
	}

	payloadLen := binary.LittleEndian.Uint32(data[12:16])
	if len(data) < headerLen+int(payloadLen) {
		return nil, ErrUnexpectedEnd
	}

	var m Module
	if err := cbor.Unmarshal(data[headerLen:headerLen+int(payloadLen)], &m); err != nil {
		return nil, fmt.Errorf("bytecode: decode payload: %w", err)
	}
	return &m, nil
}
