package service

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const (
	namerBase36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	namerTokenLength    = 6
	namerBaseMaxLength  = 30
	namerFallbackBase   = "file"
)

// UniqueName derives a collision-resistant storage key from an
// original file name: the sanitized base, the upload instant in
// milliseconds, and a random base36 token, keeping the original
// extension. The display name is preserved elsewhere; this is the
// storage key only.
func UniqueName(originalName string) (string, error) {
	base, ext := splitName(originalName)

	sanitized := sanitizeBase(base)
	if sanitized == "" {
		sanitized = namerFallbackBase
	}
	if len(sanitized) > namerBaseMaxLength {
		sanitized = sanitized[:namerBaseMaxLength]
	}

	token, err := randomToken(namerTokenLength)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%d_%s", sanitized, time.Now().UnixMilli(), token)
	if ext != "" {
		name += "." + ext
	}
	return name, nil
}

func splitName(name string) (base, ext string) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}

func sanitizeBase(base string) string {
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func randomToken(length int) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		out[i] = namerBase36Alphabet[int(raw[i])%len(namerBase36Alphabet)]
	}
	return string(out), nil
}
