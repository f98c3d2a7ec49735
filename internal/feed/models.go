package feed

import (
	"strings"
	"time"

	"backend-driftline/internal/profile"
)

// PageSize is the fixed feed page length. hasMore is inferred from a full
// page, so a feed whose size is an exact multiple of PageSize costs one extra
// empty fetch before converging.
const PageSize = 20

type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

type Media struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	URL        string    `json:"image_url"`
	Kind       MediaKind `json:"kind"`
	OrderIndex int       `json:"order_index"`
}

type Post struct {
	ID            string           `json:"id"`
	AuthorID      string           `json:"author_id"`
	Content       string           `json:"content"`
	Author        *profile.Profile `json:"author,omitempty"`
	Media         []Media          `json:"media"`
	LikeCount     int              `json:"like_count"`
	LikedByViewer bool             `json:"liked_by_viewer"`
	CreatedAt     time.Time        `json:"created_at"`
}

// KindFromContentType classifies an upload at creation time so the kind is
// stored with the row instead of being re-derived from the URL on every read.
func KindFromContentType(contentType string) MediaKind {
	if strings.HasPrefix(contentType, "video/") {
		return KindVideo
	}
	return KindImage
}

// KindFromURL is the legacy fallback for rows persisted before the kind
// column existed.
func KindFromURL(url string) MediaKind {
	lower := strings.ToLower(url)
	for _, ext := range []string{".mp4", ".mov", ".webm"} {
		if strings.Contains(lower, ext) {
			return KindVideo
		}
	}
	return KindImage
}
