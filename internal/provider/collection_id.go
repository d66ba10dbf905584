package provider

import (
	"path/filepath"
	"strings"
	"unicode"
)

// collectionPrefix namespaces every collection so unrelated data in the same
// data directory can never collide with a provider index.
const collectionPrefix = "platonic_"

// CollectionID derives the stable collection identifier for a provider name.
// The mapping must not change between releases: a renamed collection orphans
// the provider's persisted index.
//
// The name is lowercased, whitespace and underscores become hyphens, any
// character outside [a-z0-9._-] is dropped, and leading/trailing
// non-alphanumerics are trimmed before prefixing.
func CollectionID(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '_':
			b.WriteRune('-')
		}
	}

	cleaned := strings.TrimFunc(b.String(), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	return collectionPrefix + cleaned
}

// Dir returns the on-disk directory for a provider's collection.
func Dir(dataDir, name string) string {
	return filepath.Join(dataDir, CollectionID(name))
}
