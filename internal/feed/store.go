package feed

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"sync"
	"time"

	"backend-driftline/internal/blob"
)

// Upload is one file attached to a post submission, already read off the
// wire.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Snapshot is the externally visible feed state.
type Snapshot struct {
	Posts   []Post     `json:"posts"`
	Cursor  *time.Time `json:"cursor,omitempty"`
	HasMore bool       `json:"has_more"`
	Loading bool       `json:"loading"`
}

// Store owns one viewer's paginated timeline: the materialized posts, the
// keyset cursor, the has-more flag and the single-slot in-flight guard.
// All state transitions happen under the mutex; remote mutations are
// confirmed before local state reflects them.
type Store struct {
	gw     Gateway
	blobs  blob.Store
	viewer string

	mu         sync.Mutex
	posts      []Post
	cursor     *time.Time
	hasMore    bool
	loading    bool
	generation uint64
}

func NewStore(gw Gateway, blobs blob.Store, viewerID string) *Store {
	return &Store{
		gw:      gw,
		blobs:   blobs,
		viewer:  viewerID,
		hasMore: true,
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]Post, len(s.posts))
	copy(posts, s.posts)

	var cursor *time.Time
	if s.cursor != nil {
		c := *s.cursor
		cursor = &c
	}
	return Snapshot{Posts: posts, Cursor: cursor, HasMore: s.hasMore, Loading: s.loading}
}

// FetchPage loads the next page (or the first, when reset) and applies it to
// local state. Only one fetch may be in flight; a concurrent call gets
// ErrFetchInFlight instead of racing the pending one. A response that arrives
// after the store was invalidated is discarded.
func (s *Store) FetchPage(ctx context.Context, reset bool) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrFetchInFlight
	}
	s.loading = true
	s.generation++
	gen := s.generation

	var before *time.Time
	if !reset && s.cursor != nil {
		c := *s.cursor
		before = &c
	}
	s.mu.Unlock()

	page, err := s.gw.Page(ctx, before, s.viewer, PageSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrFetchSuperseded
	}
	s.loading = false
	if err != nil {
		// Prior posts, cursor and hasMore stay as they were.
		return err
	}

	if reset {
		s.posts = page
		s.cursor = nil
		if len(page) > 0 {
			last := page[len(page)-1].CreatedAt
			s.cursor = &last
		}
	} else {
		s.posts = append(s.posts, page...)
		if len(page) > 0 {
			last := page[len(page)-1].CreatedAt
			s.cursor = &last
		}
	}
	// Heuristic, not an exact count: a full page means there may be more, so
	// a feed sized at an exact multiple of PageSize costs one empty fetch.
	s.hasMore = len(page) == PageSize
	return nil
}

// Invalidate discards all local state and orphans any in-flight fetch; its
// response will be dropped on arrival.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.posts = nil
	s.cursor = nil
	s.hasMore = true
	s.loading = false
}

// CreatePost inserts the post row, then uploads each file in order and
// records its media row. Uploads are sequential; a failure at index i aborts
// the loop with media 0..i-1 already persisted and nothing rolled back. On
// success the materialized post is prepended locally without a re-fetch.
func (s *Store) CreatePost(ctx context.Context, content string, files []Upload) (Post, error) {
	if content == "" && len(files) == 0 {
		return Post{}, ErrEmptyPost
	}

	post, err := s.gw.InsertPost(ctx, s.viewer, content)
	if err != nil {
		return Post{}, err
	}

	now := time.Now().UnixMilli()
	for i, f := range files {
		objectPath := mediaObjectPath(post.ID, now, i, f.Name)
		if err := s.blobs.Upload(ctx, objectPath, bytes.NewReader(f.Data), int64(len(f.Data)), f.ContentType, false); err != nil {
			return post, &PartialUploadError{PostID: post.ID, Uploaded: i, Err: err}
		}
		media, err := s.gw.InsertMedia(ctx, post.ID, s.blobs.PublicURL(objectPath), KindFromContentType(f.ContentType), i)
		if err != nil {
			return post, &PartialUploadError{PostID: post.ID, Uploaded: i, Err: err}
		}
		post.Media = append(post.Media, media)
	}

	post.LikeCount = 0
	post.LikedByViewer = false

	s.mu.Lock()
	s.posts = append([]Post{post}, s.posts...)
	s.mu.Unlock()
	return post, nil
}

// ToggleLike mutates remotely first and reflects locally only after the
// mutation succeeded, so the UI can never show a like that failed to persist.
func (s *Store) ToggleLike(ctx context.Context, postID string, currentlyLiked bool) error {
	if currentlyLiked {
		if err := s.gw.DeleteLike(ctx, postID, s.viewer); err != nil {
			return err
		}
		s.applyLike(postID, -1, false)
		return nil
	}

	if err := s.gw.InsertLike(ctx, postID, s.viewer); err != nil {
		return err
	}
	s.applyLike(postID, 1, true)
	return nil
}

func (s *Store) applyLike(postID string, delta int, liked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID != postID {
			continue
		}
		s.posts[i].LikeCount += delta
		if s.posts[i].LikeCount < 0 {
			s.posts[i].LikeCount = 0
		}
		s.posts[i].LikedByViewer = liked
		return
	}
}

// DeletePost removes the post's storage objects best-effort (individual blob
// failures are logged, not reported), deletes the row scoped to the viewer,
// and drops the post from local state.
func (s *Store) DeletePost(ctx context.Context, postID string) error {
	urls, err := s.gw.MediaURLs(ctx, postID)
	if err != nil {
		log.Printf("feed: listing media for post %s: %v", postID, err)
		urls = nil
	}
	for _, url := range urls {
		objectPath := s.blobs.PathFromURL(url)
		if objectPath == "" {
			continue
		}
		if err := s.blobs.Remove(ctx, objectPath); err != nil {
			log.Printf("feed: removing blob %s: %v", objectPath, err)
		}
	}

	if err := s.gw.DeletePost(ctx, postID, s.viewer); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.posts[:0]
	for _, p := range s.posts {
		if p.ID != postID {
			kept = append(kept, p)
		}
	}
	s.posts = kept
	return nil
}

// UserPosts is a stateless author-scoped listing; it does not touch the
// timeline state.
func (s *Store) UserPosts(ctx context.Context, authorID string) ([]Post, error) {
	return s.gw.UserPosts(ctx, authorID, s.viewer)
}

func mediaObjectPath(postID string, unixMilli int64, index int, fileName string) string {
	return fmt.Sprintf("posts/%s_%d_%d%s", postID, unixMilli, index, path.Ext(fileName))
}
