package ui

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// matrix positions: 15 columns of 8 rows
const maxKeyCode = 15 * 8

// Keymap maps host keys to IKBD matrix codes (column*8 + row).
type Keymap map[ebiten.Key]uint8

func keyFromName(name string) (ebiten.Key, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "Key")
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		if strings.EqualFold(k.String(), name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// ParseKeymap reads "key,code" records. The first record is a header.
// Codes accept any base strconv understands, so 0x2a and 42 are equal.
func ParseKeymap(r io.Reader) (Keymap, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	_, _ = cr.Read() // skip header

	km := Keymap{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("couldn't read data from csv: %w", err)
		}
		if len(record) != 2 {
			return nil, fmt.Errorf("invalid format for the record: %s: must be 2 parts", strings.Join(record, string(cr.Comma)))
		}

		key, err := keyFromName(record[0])
		if err != nil {
			return nil, fmt.Errorf("invalid format for key: %w", err)
		}
		code, err := strconv.ParseUint(strings.TrimSpace(record[1]), 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid format for key code: %w", err)
		}
		if code >= maxKeyCode {
			return nil, fmt.Errorf("key code %d outside the matrix", code)
		}
		km[key] = uint8(code)
	}
	return km, nil
}

func LoadKeymap(path string) (Keymap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the keymap: %w", err)
	}
	defer f.Close()

	km, err := ParseKeymap(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return km, nil
}
