package state

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Key builders for everything the store holds. Keeping them here means a
// misspelled prefix cannot split the keyspace between writers and readers.
const (
	sessionPrefix       = "session:"
	clarificationPrefix = "clarification:"
)

func SessionKey(sessionID string) string {
	return sessionPrefix + sessionID
}

func ClarificationKey(questionText string) string {
	return clarificationPrefix + Fingerprint(questionText)
}

// Fingerprint hashes normalized question text so the same question asked by
// many doctors shares one cache entry regardless of whitespace or casing.
func Fingerprint(text string) string {
	h := fnv.New64a()
	h.Write([]byte(normalize(text)))
	return fmt.Sprintf("%x", h.Sum64())
}

func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
