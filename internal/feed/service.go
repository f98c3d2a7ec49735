package feed

import (
	"context"
	"errors"
	"sort"
	"time"

	"backend-driftline/internal/db"
	"backend-driftline/internal/profile"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Gateway is the remote-data surface the feed store drives: row CRUD for
// posts, media and likes, materialized with author profiles.
type Gateway interface {
	Page(ctx context.Context, before *time.Time, viewerID string, limit int) ([]Post, error)
	UserPosts(ctx context.Context, authorID, viewerID string) ([]Post, error)
	InsertPost(ctx context.Context, authorID, content string) (Post, error)
	InsertMedia(ctx context.Context, postID, url string, kind MediaKind, orderIndex int) (Media, error)
	InsertLike(ctx context.Context, postID, userID string) error
	DeleteLike(ctx context.Context, postID, userID string) error
	DeletePost(ctx context.Context, postID, authorID string) error
	MediaURLs(ctx context.Context, postID string) ([]string, error)
}

type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

const pageColumns = `
		SELECT p.id, p.author_id, p.content, p.created_at,
		       pr.username, pr.full_name, pr.avatar_url, pr.cover_image, pr.bio
		FROM posts p
		JOIN profiles pr ON pr.id = p.author_id`

// Page returns at most limit posts ordered by creation time descending,
// strictly older than before when set (keyset pagination).
func (s *Service) Page(ctx context.Context, before *time.Time, viewerID string, limit int) ([]Post, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if before != nil {
		rows, err = s.db.Query(ctx, pageColumns+`
		WHERE p.created_at < $1
		ORDER BY p.created_at DESC
		LIMIT $2
	`, *before, limit)
	} else {
		rows, err = s.db.Query(ctx, pageColumns+`
		ORDER BY p.created_at DESC
		LIMIT $1
	`, limit)
	}
	if err != nil {
		return nil, err
	}
	return s.materialize(ctx, rows, viewerID)
}

// UserPosts lists one author's posts, newest first, materialized the same way
// as a feed page but without touching any cursor.
func (s *Service) UserPosts(ctx context.Context, authorID, viewerID string) ([]Post, error) {
	rows, err := s.db.Query(ctx, pageColumns+`
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC
	`, authorID)
	if err != nil {
		return nil, err
	}
	return s.materialize(ctx, rows, viewerID)
}

func (s *Service) materialize(ctx context.Context, rows pgx.Rows, viewerID string) ([]Post, error) {
	defer rows.Close()

	var posts []Post
	var ids []string
	for rows.Next() {
		var p Post
		var author profile.Profile
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt,
			&author.Username, &author.FullName, &author.AvatarURL, &author.CoverImage, &author.Bio); err != nil {
			return nil, err
		}
		author.ID = p.AuthorID
		p.Author = &author
		p.Media = []Media{}
		ids = append(ids, p.ID)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	media, err := s.loadMedia(ctx, ids)
	if err != nil {
		return nil, err
	}
	likes, err := s.loadLikes(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Like rows are folded into a count and a viewer flag; the raw user list
	// is not part of the public post shape.
	for i := range posts {
		if m := media[posts[i].ID]; m != nil {
			posts[i].Media = m
		}
		postLikes := likes[posts[i].ID]
		posts[i].LikeCount = len(postLikes)
		posts[i].LikedByViewer = viewerID != "" && contains(postLikes, viewerID)
	}
	return posts, nil
}

func (s *Service) loadMedia(ctx context.Context, postIDs []string) (map[string][]Media, error) {
	if len(postIDs) == 0 {
		return map[string][]Media{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, post_id, image_url, kind, order_index
		FROM post_images WHERE post_id = ANY($1)
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	media := map[string][]Media{}
	for rows.Next() {
		var m Media
		var kind string
		if err := rows.Scan(&m.ID, &m.PostID, &m.URL, &kind, &m.OrderIndex); err != nil {
			return nil, err
		}
		m.Kind = MediaKind(kind)
		if m.Kind == "" {
			// Rows from before the kind column was populated.
			m.Kind = KindFromURL(m.URL)
		}
		media[m.PostID] = append(media[m.PostID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for id := range media {
		items := media[id]
		sort.Slice(items, func(i, j int) bool { return items[i].OrderIndex < items[j].OrderIndex })
		media[id] = items
	}
	return media, nil
}

func (s *Service) loadLikes(ctx context.Context, postIDs []string) (map[string][]string, error) {
	if len(postIDs) == 0 {
		return map[string][]string{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT post_id, user_id
		FROM likes WHERE post_id = ANY($1)
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := map[string][]string{}
	for rows.Next() {
		var postID, userID string
		if err := rows.Scan(&postID, &userID); err != nil {
			return nil, err
		}
		likes[postID] = append(likes[postID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return likes, nil
}

func (s *Service) InsertPost(ctx context.Context, authorID, content string) (Post, error) {
	post := Post{
		ID:       uuid.NewString(),
		AuthorID: authorID,
		Content:  content,
		Media:    []Media{},
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO posts (id, author_id, content)
		VALUES ($1,$2,$3)
		RETURNING created_at
	`, post.ID, post.AuthorID, post.Content)
	if err := row.Scan(&post.CreatedAt); err != nil {
		return Post{}, err
	}

	row = s.db.QueryRow(ctx, `
		SELECT id, username, full_name, avatar_url, cover_image, bio
		FROM profiles WHERE id = $1
	`, authorID)
	var author profile.Profile
	if err := row.Scan(&author.ID, &author.Username, &author.FullName, &author.AvatarURL, &author.CoverImage, &author.Bio); err != nil {
		return Post{}, err
	}
	post.Author = &author
	return post, nil
}

func (s *Service) InsertMedia(ctx context.Context, postID, url string, kind MediaKind, orderIndex int) (Media, error) {
	m := Media{
		ID:         uuid.NewString(),
		PostID:     postID,
		URL:        url,
		Kind:       kind,
		OrderIndex: orderIndex,
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO post_images (id, post_id, image_url, kind, order_index)
		VALUES ($1,$2,$3,$4,$5)
	`, m.ID, m.PostID, m.URL, string(m.Kind), m.OrderIndex)
	if err != nil {
		return Media{}, err
	}
	return m, nil
}

// InsertLike relies on the (post_id, user_id) unique constraint; a duplicate
// like surfaces as ErrAlreadyLiked rather than being swallowed.
func (s *Service) InsertLike(ctx context.Context, postID, userID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO likes (post_id, user_id)
		VALUES ($1,$2)
	`, postID, userID)
	if isUniqueViolation(err) {
		return ErrAlreadyLiked
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Service) DeleteLike(ctx context.Context, postID, userID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM likes WHERE post_id = $1 AND user_id = $2
	`, postID, userID)
	return err
}

// DeletePost is scoped to the author so a user can only delete their own
// posts. Child media and like rows cascade in the schema.
func (s *Service) DeletePost(ctx context.Context, postID, authorID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM posts WHERE id = $1 AND author_id = $2
	`, postID, authorID)
	return err
}

func (s *Service) MediaURLs(ctx context.Context, postID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT image_url FROM post_images WHERE post_id = $1
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
