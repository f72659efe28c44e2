package storage

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MinPresignTTL and MaxPresignTTL bound presigned URL lifetimes.
	MinPresignTTL = time.Second
	MaxPresignTTL = 7 * 24 * time.Hour

	// DefaultPresignTTL is used when callers pass a zero TTL.
	DefaultPresignTTL = time.Hour
)

// ValidateKey enforces the blob key contract: non-empty, no leading slash,
// no empty or ".." path segments, charset [A-Za-z0-9/_.-].
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("blob key cannot be empty")
	}
	if strings.HasPrefix(key, "/") {
		return fmt.Errorf("blob key cannot start with '/': %q", key)
	}
	if strings.Contains(key, "//") {
		return fmt.Errorf("blob key cannot contain empty segments: %q", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return fmt.Errorf("blob key cannot contain '..' segments: %q", key)
		}
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '/' || r == '_' || r == '.' || r == '-':
		default:
			return fmt.Errorf("blob key contains illegal character %q: %q", r, key)
		}
	}
	return nil
}

// ValidateTTL normalizes a presign TTL, applying the default for zero and
// rejecting values outside [1s, 7d].
func ValidateTTL(ttl time.Duration) (time.Duration, error) {
	if ttl == 0 {
		return DefaultPresignTTL, nil
	}
	if ttl < MinPresignTTL || ttl > MaxPresignTTL {
		return 0, fmt.Errorf("presign TTL must be between %s and %s, got %s", MinPresignTTL, MaxPresignTTL, ttl)
	}
	return ttl, nil
}

// DocumentKey builds the canonical blob key for an uploaded document. The
// filename must already be sanitized.
func DocumentKey(courseCode, documentID, sanitizedFilename string) string {
	return fmt.Sprintf("documents/%s/%s/%s", courseCode, documentID, sanitizedFilename)
}
