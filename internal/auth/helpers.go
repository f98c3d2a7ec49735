package auth

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func usernameFromEmail(email, fallback string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return fallback
}
