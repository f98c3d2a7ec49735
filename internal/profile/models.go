package profile

type Profile struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	AvatarURL  string `json:"avatar_url"`
	CoverImage string `json:"cover_image"`
	Bio        string `json:"bio"`
}

// Update carries a partial profile change; nil fields are left untouched.
type Update struct {
	Username   *string `json:"username"`
	FullName   *string `json:"full_name"`
	AvatarURL  *string `json:"avatar_url"`
	CoverImage *string `json:"cover_image"`
	Bio        *string `json:"bio"`
}

// ImageSlot selects which profile image an upload replaces.
type ImageSlot string

const (
	SlotAvatar ImageSlot = "avatar"
	SlotCover  ImageSlot = "cover"
)

func (s ImageSlot) Valid() bool {
	return s == SlotAvatar || s == SlotCover
}
