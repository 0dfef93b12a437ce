// Package maps encodes and decodes eic memory maps as JSON and checks them
// against their blake2b fingerprint.
package maps

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/davecheney/eic"
	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns the hex blake2b-256 digest of m's canonical
// encoding, ignoring its Checksum field.
func Fingerprint(m *eic.MemoryMap) string {
	c := *m
	c.Checksum = ""
	buf, err := sonnet.Marshal(&c)
	if err != nil {
		// MemoryMap holds only plain values.
		panic(err)
	}
	sum := blake2b.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// Encode returns the canonical JSON encoding of m with its checksum filled
// in.
func Encode(m *eic.MemoryMap) ([]byte, error) {
	c := *m
	c.Checksum = Fingerprint(m)
	return sonnet.Marshal(&c)
}

// Parse decodes and validates a JSON memory map. If the map carries a
// checksum it must match the map's fingerprint.
func Parse(buf []byte) (*eic.MemoryMap, error) {
	var m eic.MemoryMap
	if err := sonnet.Unmarshal(buf, &m); err != nil {
		return nil, fmt.Errorf("decode memory map: %w", err)
	}
	if m.Checksum != "" {
		if fp := Fingerprint(&m); fp != m.Checksum {
			return nil, fmt.Errorf("memory map %q: checksum %s does not match fingerprint %s", m.Name, m.Checksum, fp)
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads a memory map from path.
func Load(path string) (*eic.MemoryMap, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
