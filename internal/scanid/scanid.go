// Package scanid derives a stable key for a scanned card from its text, so the
// same card ingested twice maps to one contact.
package scanid

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/hyperjump/meishi/pkg/utils"
)

const prefix = "scan:"

// ScanID returns the key for raw card text. Whitespace differences and
// letter case do not change the key; empty text yields "".
func ScanID(raw string) string {
	folded := strings.ToLower(utils.CollapseSpace(raw))
	if folded == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(folded))
	return prefix + hex.EncodeToString(hash[:])
}

// Valid reports whether id has the shape ScanID produces.
func Valid(id string) bool {
	hexPart, ok := strings.CutPrefix(id, prefix)
	if !ok || len(hexPart) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hexPart)
	return err == nil
}
