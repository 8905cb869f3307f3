package ikbd

import (
	"errors"
	"fmt"
	"os"
)

const (
	romBase = 0xf000
	// ROMSize is the size of the HD6301V1 mask ROM.
	ROMSize = 0x1000
)

var ErrROMSize = errors.New("rom image must be exactly 4096 bytes")

// ROM is the firmware image mapped at $F000-$FFFF. It is never modified
// after loading, so one image can back several machines.
type ROM struct {
	data [ROMSize]uint8
}

// NewROM copies image into a ROM.
func NewROM(image []byte) (*ROM, error) {
	if len(image) != ROMSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrROMSize, len(image))
	}
	r := &ROM{}
	copy(r.data[:], image)
	return r, nil
}

// LoadROM reads a raw firmware dump from path.
func LoadROM(path string) (*ROM, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read the rom: %w", err)
	}
	r, err := NewROM(image)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func (r *ROM) Read8(addr uint16) uint8 {
	return r.data[addr&(ROMSize-1)]
}

// ResetVector is the big-endian word at $FFFE.
func (r *ROM) ResetVector() uint16 {
	return uint16(r.data[ROMSize-2])<<8 | uint16(r.data[ROMSize-1])
}

// Peek8 lets the disassembler walk the image with CPU addresses.
// Addresses below the ROM read as unmapped.
func (r *ROM) Peek8(addr uint16) uint8 {
	if addr < romBase {
		return unmapped
	}
	return r.Read8(addr)
}
