package profile

import (
	"context"
	"errors"

	"backend-driftline/internal/db"
)

var ErrBadImageSlot = errors.New("image slot must be avatar or cover")

type Repository struct {
	db db.Querier
}

func NewRepository(querier db.Querier) *Repository {
	return &Repository{db: querier}
}

func (r *Repository) Get(ctx context.Context, id string) (Profile, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, full_name, avatar_url, cover_image, bio
		FROM profiles WHERE id = $1
	`, id)

	var p Profile
	if err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.CoverImage, &p.Bio); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Update applies the non-nil fields of upd and returns the resulting profile.
func (r *Repository) Update(ctx context.Context, id string, upd Update) (Profile, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE profiles SET
			username = COALESCE($2, username),
			full_name = COALESCE($3, full_name),
			avatar_url = COALESCE($4, avatar_url),
			cover_image = COALESCE($5, cover_image),
			bio = COALESCE($6, bio),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, username, full_name, avatar_url, cover_image, bio
	`, id, upd.Username, upd.FullName, upd.AvatarURL, upd.CoverImage, upd.Bio)

	var p Profile
	if err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.CoverImage, &p.Bio); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// SetImage stores the public URL of a freshly uploaded profile image in the
// slot's column.
func (r *Repository) SetImage(ctx context.Context, id string, slot ImageSlot, url string) (Profile, error) {
	if !slot.Valid() {
		return Profile{}, ErrBadImageSlot
	}
	upd := Update{}
	if slot == SlotAvatar {
		upd.AvatarURL = &url
	} else {
		upd.CoverImage = &url
	}
	return r.Update(ctx, id, upd)
}
