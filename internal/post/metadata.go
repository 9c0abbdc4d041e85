package post

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrMissingMetadata indicates the document did not start with a `---` fence.
	ErrMissingMetadata = errors.New("post: no metadata block")
	// ErrMalformedMetadata indicates the block was not closed or had a line
	// without a colon.
	ErrMalformedMetadata = errors.New("post: malformed metadata block")
)

const fence = "---"

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

// Metadata holds the `key: value` pairs of a post header.
type Metadata map[string]string

// Get returns the value stored for key and whether it was present.
func (m Metadata) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// ParseMetadata splits a post into its metadata block and markdown body.
//
// The block opens with `---` at the very start of the document and closes at
// the next `---`. Each non-empty line is split at its first colon; the key is
// kept verbatim and the value is trimmed, so titles may contain colons.
func ParseMetadata(content string) (Metadata, string, error) {
	if !strings.HasPrefix(content, fence) {
		return nil, "", ErrMissingMetadata
	}
	end := strings.Index(content[len(fence):], fence)
	if end == -1 {
		return nil, "", fmt.Errorf("%w: end of metadata block not found", ErrMalformedMetadata)
	}
	end += len(fence)

	meta := Metadata{}
	block := strings.TrimSpace(content[len(fence):end])
	if block != "" {
		for _, line := range lineBreaks.Split(block, -1) {
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				return nil, "", fmt.Errorf("%w: end of metadata entry not found: %q", ErrMalformedMetadata, line)
			}
			meta[key] = strings.TrimSpace(value)
		}
	}
	return meta, content[end+len(fence):], nil
}
