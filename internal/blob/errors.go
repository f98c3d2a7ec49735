package blob

import (
	"errors"
	"strings"
)

var ErrObjectExists = errors.New("object already exists")

// ObjectPath extracts the bucket-relative object path from a public URL
// produced by PublicURL. Returns empty when the URL does not contain the
// bucket segment.
func ObjectPath(publicURL, bucket string) string {
	marker := "/" + bucket + "/"
	idx := strings.Index(publicURL, marker)
	if idx < 0 {
		return ""
	}
	return publicURL[idx+len(marker):]
}
