package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
)

var errProfile = errors.New("profile error")

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func profileRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "username", "full_name", "avatar_url", "cover_image", "bio"})
}

func TestGetProfile(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, username, full_name, avatar_url, cover_image, bio`).
		WithArgs("user-1").
		WillReturnRows(profileRows().AddRow("user-1", "bob", "Bob B", "", "", "hi"))

	repo := NewRepository(mock)
	p, err := repo.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Username != "bob" || p.Bio != "hi" {
		t.Fatalf("unexpected profile")
	}
}

func TestGetProfileError(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, username, full_name, avatar_url, cover_image, bio`).
		WithArgs("user-1").
		WillReturnError(errProfile)

	repo := NewRepository(mock)
	if _, err := repo.Get(context.Background(), "user-1"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestUpdatePartial(t *testing.T) {
	mock := newMock(t)

	bio := "new bio"
	mock.ExpectQuery(`UPDATE profiles SET`).
		WithArgs("user-1", (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), &bio).
		WillReturnRows(profileRows().AddRow("user-1", "bob", "Bob B", "", "", "new bio"))

	repo := NewRepository(mock)
	p, err := repo.Update(context.Background(), "user-1", Update{Bio: &bio})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Bio != "new bio" {
		t.Fatalf("expected updated bio")
	}
}

func TestSetImageSlots(t *testing.T) {
	mock := newMock(t)

	url := "https://cdn/avatar.png"
	mock.ExpectQuery(`UPDATE profiles SET`).
		WithArgs("user-1", (*string)(nil), (*string)(nil), &url, (*string)(nil), (*string)(nil)).
		WillReturnRows(profileRows().AddRow("user-1", "bob", "", url, "", ""))

	repo := NewRepository(mock)
	p, err := repo.SetImage(context.Background(), "user-1", SlotAvatar, url)
	if err != nil {
		t.Fatalf("set avatar: %v", err)
	}
	if p.AvatarURL != url {
		t.Fatalf("expected avatar url")
	}

	mock.ExpectQuery(`UPDATE profiles SET`).
		WithArgs("user-1", (*string)(nil), (*string)(nil), (*string)(nil), &url, (*string)(nil)).
		WillReturnRows(profileRows().AddRow("user-1", "bob", "", "", url, ""))

	p, err = repo.SetImage(context.Background(), "user-1", SlotCover, url)
	if err != nil {
		t.Fatalf("set cover: %v", err)
	}
	if p.CoverImage != url {
		t.Fatalf("expected cover url")
	}
}

func TestSetImageBadSlot(t *testing.T) {
	repo := NewRepository(nil)
	if _, err := repo.SetImage(context.Background(), "user-1", ImageSlot("banner"), "url"); !errors.Is(err, ErrBadImageSlot) {
		t.Fatalf("expected bad slot error")
	}
}
