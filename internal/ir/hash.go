package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainSource = "luasharp/source/v1"
	DomainOutput = "luasharp/output/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + salt + 0x00 + data)
func hashWithDomain(domain, salt string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write([]byte(salt))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SourceHash identifies a source file's content under a given emitter
// configuration. salt should change whenever the same source would produce
// different output (type map, tool version).
func SourceHash(src []byte, salt string) string {
	return hashWithDomain(DomainSource, salt, src)
}

// OutputHash identifies generated Lua text.
func OutputHash(out []byte) string {
	return hashWithDomain(DomainOutput, "", out)
}
