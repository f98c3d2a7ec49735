package session

import (
	"backend-driftline/internal/auth"
	"backend-driftline/internal/profile"
)

// State is the explicit session state machine. There is no ambiguous
// "identity set, profile unknown" middle ground a consumer can observe by
// accident; the no-profile window has its own tag.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateNoProfile     State = "authenticated_no_profile"
	StateAuthenticated State = "authenticated"
	StateFailed        State = "failed"
)

type Snapshot struct {
	State   State            `json:"state"`
	User    *auth.User       `json:"user,omitempty"`
	Profile *profile.Profile `json:"profile,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}
