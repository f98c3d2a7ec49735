package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchInFlight rejects a page fetch while another one is pending;
	// the store allows a single in-flight fetch at a time.
	ErrFetchInFlight = errors.New("feed fetch already in flight")

	// ErrEmptyPost rejects a submission with no content and no files before
	// anything is dispatched.
	ErrEmptyPost = errors.New("post needs content or media")

	// ErrFetchSuperseded marks a page response that arrived after the store
	// was invalidated; its state transition was discarded.
	ErrFetchSuperseded = errors.New("feed fetch superseded")

	// ErrAlreadyLiked maps the likes table's unique-pair violation: the
	// viewer's local liked flag was stale.
	ErrAlreadyLiked = errors.New("post already liked")
)

// PartialUploadError reports a createPost that persisted the post row and the
// first Uploaded media rows before an upload failed. Nothing is rolled back;
// callers see exactly what was persisted.
type PartialUploadError struct {
	PostID   string
	Uploaded int
	Err      error
}

func (e *PartialUploadError) Error() string {
	return fmt.Sprintf("post %s: upload %d failed after %d media persisted: %v",
		e.PostID, e.Uploaded, e.Uploaded, e.Err)
}

func (e *PartialUploadError) Unwrap() error { return e.Err }
