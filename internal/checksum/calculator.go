package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Calculator computes document checksums.
type Calculator interface {
	// CalculateRaw computes a checksum of the raw, unmodified content.
	CalculateRaw(content []byte) string

	// CalculateNormalized computes a checksum that ignores XML comments and
	// formatting whitespace.
	CalculateNormalized(content []byte) string
}

// SHA256 implements checksum calculation using SHA-256.
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple goroutines.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of raw content.
func (c SHA256) CalculateRaw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// CalculateNormalized computes SHA-256 of normalized content.
func (c SHA256) CalculateNormalized(content []byte) string {
	hash := sha256.Sum256([]byte(c.normalize(string(content))))
	return hex.EncodeToString(hash[:])
}

// Short returns the first n hex characters of the SHA-256 of s.
// n is clamped to [1, 64].
func Short(s string, n int) string {
	if n < 1 {
		n = 1
	}
	hash := sha256.Sum256([]byte(s))
	full := hex.EncodeToString(hash[:])
	if n > len(full) {
		n = len(full)
	}
	return full[:n]
}

// normalize removes comments, collapses whitespace runs to one space and
// drops whitespace between a tag end and the next tag start.
func (c SHA256) normalize(content string) string {
	cleaned := removeComments(content)

	var b strings.Builder
	b.Grow(len(cleaned))

	pendingSpace := false
	var last rune
	for _, r := range cleaned {
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 && !(last == '>' && r == '<') {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
		last = r
	}

	return b.String()
}

type commentState int

const (
	csNormal commentState = iota
	csComment
	csCDATA
)

const (
	commentOpen  = "<!--"
	commentClose = "-->"
	cdataOpen    = "<![CDATA["
	cdataClose   = "]]>"
)

// removeComments drops <!-- --> comments while leaving CDATA sections intact.
func removeComments(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	state := csNormal
	i := 0
	for i < len(content) {
		rest := content[i:]
		switch state {
		case csNormal:
			switch {
			case strings.HasPrefix(rest, commentOpen):
				state = csComment
				i += len(commentOpen)
			case strings.HasPrefix(rest, cdataOpen):
				state = csCDATA
				b.WriteString(cdataOpen)
				i += len(cdataOpen)
			default:
				b.WriteByte(content[i])
				i++
			}

		case csComment:
			if strings.HasPrefix(rest, commentClose) {
				state = csNormal
				i += len(commentClose)
			} else {
				i++
			}

		case csCDATA:
			if strings.HasPrefix(rest, cdataClose) {
				state = csNormal
				b.WriteString(cdataClose)
				i += len(cdataClose)
			} else {
				b.WriteByte(content[i])
				i++
			}
		}
	}

	return b.String()
}
