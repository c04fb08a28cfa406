// Package id generates prefixed identifiers for persisted records.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for each kind of record. The prefix makes an ID self-describing
// in logs and lets handlers reject an ID of the wrong kind early.
const (
	PrefixUser        = "user"
	PrefixEntry       = "book"
	PrefixAssociation = "ub"
	PrefixNote        = "note"
	PrefixUnlock      = "unlock"
)

// Generate creates an ID of the form prefix-nanoid (e.g. "ub-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if the system has no entropy.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// HasPrefix reports whether id was generated with prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"-") && len(id) > len(prefix)+1
}
