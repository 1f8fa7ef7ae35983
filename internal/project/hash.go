package project

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// DomainDocument prefixes document content hashes.
// Version suffix enables future algorithm migration.
const DomainDocument = "kinocut/document/v1"

// DocumentHash computes a content-addressed identity for a document:
// SHA-256 of its canonical form with domain separation. The hash is
// independent of the formatting of the file the document came from,
// because the document is re-rendered canonically before hashing.
func DocumentHash(d *Document) (string, error) {
	canonical, err := canonicalJSON(d)
	if err != nil {
		return "", fmt.Errorf("project: hash: %w", err)
	}
	return hashWithDomain(DomainDocument, canonical), nil
}

// canonicalJSON renders v deterministically (struct fields in
// declaration order, map keys sorted, no HTML escaping) and
// NFC-normalizes the result, so strings that render identically but
// differ in code point sequence hash the same.
func canonicalJSON(v any) ([]byte, error) {
	data, err := marshalDeterministic(v)
	if err != nil {
		return nil, err
	}
	return norm.NFC.Bytes(data), nil
}

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data). The null byte separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
