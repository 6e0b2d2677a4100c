package artifact

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/gofrs/uuid"
)

const (
	// Magic marks the start of every encoded unit.
	Magic = "MRU"

	// Version is the envelope format version written by Encode.
	Version uint8 = 1
)

var (
	// ErrEmpty is returned when decoding zero bytes.
	ErrEmpty = errors.New("artifact: empty unit")

	// ErrChecksum is returned when the code does not match its checksum.
	ErrChecksum = errors.New("artifact: checksum mismatch")
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("artifact: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Unit is the envelope around the marshaled code of one compilation unit.
type Unit struct {
	Magic    string    `cbor:"1,keyasint"`
	Version  uint8     `cbor:"2,keyasint"`
	ID       uuid.UUID `cbor:"3,keyasint"`
	Name     string    `cbor:"4,keyasint"`
	Globals  []string  `cbor:"5,keyasint,omitempty"` // global names the code was compiled against
	Checksum [32]byte  `cbor:"6,keyasint"`
	Code     []byte    `cbor:"7,keyasint"`
}

// NewUnit wraps code into a unit and computes its checksum.
func NewUnit(id uuid.UUID, name string, globals []string, code []byte) *Unit {
	return &Unit{
		Magic:    Magic,
		Version:  Version,
		ID:       id,
		Name:     name,
		Globals:  globals,
		Checksum: sha256.Sum256(code),
		Code:     code,
	}
}

// Encode serializes the unit to canonical CBOR.
func (u *Unit) Encode() ([]byte, error) {
	return encMode.Marshal(u)
}

// Verify checks the envelope header and the code checksum.
func (u *Unit) Verify() error {
	if u.Magic != Magic {
		return fmt.Errorf("artifact: bad magic %q", u.Magic)
	}
	if u.Version != Version {
		return fmt.Errorf("artifact: unsupported version %d", u.Version)
	}
	sum := sha256.Sum256(u.Code)
	if !bytes.Equal(sum[:], u.Checksum[:]) {
		return ErrChecksum
	}
	return nil
}

// Decode parses and verifies an encoded unit.
func Decode(data []byte) (*Unit, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	var u Unit
	if err := cbor.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("artifact: unmarshal unit: %w", err)
	}
	if err := u.Verify(); err != nil {
		return nil, err
	}
	return &u, nil
}
