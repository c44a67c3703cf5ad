package models

import (
	"errors"
	"fmt"
	"strings"
)

// ContentType selects which video lengths a request is interested in.
type ContentType string

const (
	ContentShorts ContentType = "shorts"
	ContentVideos ContentType = "videos"
	ContentBoth   ContentType = "both"
)

// ShortMaxSeconds is the longest duration still classified as a short.
const ShortMaxSeconds = 60

var ErrInvalidContentType = errors.New("invalid content type")

// ParseContentType normalizes a request value. Empty means both.
func ParseContentType(s string) (ContentType, error) {
	switch ct := ContentType(strings.ToLower(strings.TrimSpace(s))); ct {
	case "":
		return ContentBoth, nil
	case ContentShorts, ContentVideos, ContentBoth:
		return ct, nil
	default:
		return "", fmt.Errorf("%w %q (expected shorts, videos or both)", ErrInvalidContentType, s)
	}
}

// IsShort reports whether a duration in seconds classifies as a short.
func IsShort(seconds int) bool {
	return seconds <= ShortMaxSeconds
}

// Allows reports whether a video of the given duration matches the content type.
func (c ContentType) Allows(seconds int) bool {
	switch c {
	case ContentShorts:
		return IsShort(seconds)
	case ContentVideos:
		return !IsShort(seconds)
	default:
		return true
	}
}

// DurationHint is the provider-side videoDuration filter for this content type,
// or "" when no hint should be sent.
func (c ContentType) DurationHint() string {
	switch c {
	case ContentShorts:
		return "short"
	case ContentVideos:
		return "medium"
	default:
		return ""
	}
}

// Noun is how prompts refer to a single item of this length.
func Noun(seconds int) string {
	if IsShort(seconds) {
		return "short"
	}
	return "video"
}
