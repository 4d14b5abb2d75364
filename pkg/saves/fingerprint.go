package saves

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// contentPrefixLen bounds how much of the content body participates in the
// fingerprint. Long posts edited at the tail still map to the same record.
const contentPrefixLen = 256

// Fingerprint computes the stable content id for a payload. An explicit
// source identifier wins; otherwise the id is derived from the source kind,
// author and a prefix of the content. Identical logical items always hash to
// the same id, which is what makes Submit idempotent.
func Fingerprint(kind SourceKind, payload Payload) string {
	var components []string
	if payload.SourceID != "" {
		components = []string{string(kind), payload.SourceID}
	} else {
		content := payload.Content
		if len(content) > contentPrefixLen {
			content = content[:contentPrefixLen]
		}
		components = []string{string(kind), payload.Author, content}
	}

	hash := sha256.Sum256([]byte(strings.Join(components, "|")))
	return hex.EncodeToString(hash[:16])
}
