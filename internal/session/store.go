package session

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"sync"
	"time"

	"backend-driftline/internal/auth"
	"backend-driftline/internal/blob"
	"backend-driftline/internal/profile"

	"github.com/redis/go-redis/v9"
)

const tokenTTL = 7 * 24 * time.Hour

// Upload is a profile image read off the wire.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Store holds one client's authenticated identity and profile. Sign-in,
// sign-up and restore flip the state machine to authenticated-no-profile and
// trigger an asynchronous profile fetch; the profile arriving later flips it
// to fully authenticated. The refresh token is persisted in Redis so a
// restarted client can restore its session.
type Store struct {
	auth     *auth.Service
	profiles *profile.Repository
	blobs    blob.Store
	redis    *redis.Client
	clientID string

	mu         sync.Mutex
	state      State
	user       *auth.User
	profile    *profile.Profile
	tokens     auth.TokenResponse
	generation uint64
}

func NewStore(authSvc *auth.Service, profiles *profile.Repository, blobs blob.Store, redisClient *redis.Client, clientID string) *Store {
	return &Store{
		auth:     authSvc,
		profiles: profiles,
		blobs:    blobs,
		redis:    redisClient,
		clientID: clientID,
		state:    StateAnonymous,
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, User: s.user, Profile: s.profile}
}

// UserID returns the authenticated user's ID, empty when anonymous.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// Initialize restores a persisted session. Missing or invalid persisted
// tokens leave the store anonymous; infrastructure errors mark it failed.
func (s *Store) Initialize(ctx context.Context) (Snapshot, error) {
	token, err := s.loadToken(ctx)
	if err != nil {
		return s.fail(err), err
	}
	if token == "" {
		return s.reset(), nil
	}

	userID, err := s.auth.ValidateRefreshToken(ctx, token)
	if err != nil {
		// A stale persisted token is not an error; the client just signs in
		// again.
		s.clearToken(ctx)
		return s.reset(), nil
	}

	user, err := s.auth.GetUser(ctx, userID)
	if err != nil {
		return s.fail(err), err
	}

	tokens, err := s.auth.GenerateTokens(ctx, userID)
	if err != nil {
		return s.fail(err), err
	}
	return s.signedIn(ctx, user, tokens), nil
}

func (s *Store) SignIn(ctx context.Context, req SignInRequest) (Snapshot, error) {
	user, tokens, err := s.auth.Login(ctx, auth.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		return s.Snapshot(), err
	}
	return s.signedIn(ctx, user, tokens), nil
}

func (s *Store) SignUp(ctx context.Context, req SignUpRequest) (Snapshot, error) {
	user, tokens, err := s.auth.Register(ctx, auth.RegisterRequest{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return s.Snapshot(), err
	}
	return s.signedIn(ctx, user, tokens), nil
}

func (s *Store) SignInWithProvider(ctx context.Context, req auth.ProviderLoginRequest) (Snapshot, error) {
	user, tokens, err := s.auth.LoginWithProvider(ctx, req)
	if err != nil {
		return s.Snapshot(), err
	}
	return s.signedIn(ctx, user, tokens), nil
}

// SignOut clears identity, profile and the persisted session token; the
// local session always ends. Server-side revocation is best-effort, the
// refresh token row expires on its own either way.
func (s *Store) SignOut(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	token := s.tokens.RefreshToken
	s.mu.Unlock()

	if token != "" {
		if err := s.auth.RevokeRefreshToken(ctx, token); err != nil {
			log.Printf("session: revoking refresh token: %v", err)
		}
	}
	s.clearToken(ctx)
	return s.reset(), nil
}

func (s *Store) UpdateProfile(ctx context.Context, upd profile.Update) (Snapshot, error) {
	userID := s.UserID()
	if userID == "" {
		return s.Snapshot(), ErrNotSignedIn
	}

	updated, err := s.profiles.Update(ctx, userID, upd)
	if err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	s.profile = &updated
	s.state = StateAuthenticated
	s.mu.Unlock()
	return s.Snapshot(), nil
}

// UploadProfileImage stores the image (replacing any previous one under the
// same path prefix is fine, uploads overwrite) and points the slot's profile
// column at its public URL.
func (s *Store) UploadProfileImage(ctx context.Context, file Upload, slot profile.ImageSlot) (string, error) {
	userID := s.UserID()
	if userID == "" {
		return "", ErrNotSignedIn
	}
	if !slot.Valid() {
		return "", profile.ErrBadImageSlot
	}

	objectPath := fmt.Sprintf("%ss/%s_%s_%d%s", slot, userID, slot, time.Now().UnixMilli(), path.Ext(file.Name))
	if err := s.blobs.Upload(ctx, objectPath, bytes.NewReader(file.Data), int64(len(file.Data)), file.ContentType, true); err != nil {
		return "", err
	}

	url := s.blobs.PublicURL(objectPath)
	updated, err := s.profiles.SetImage(ctx, userID, slot, url)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.profile = &updated
	s.state = StateAuthenticated
	s.mu.Unlock()
	return url, nil
}

func (s *Store) signedIn(ctx context.Context, user auth.User, tokens auth.TokenResponse) Snapshot {
	s.persistToken(ctx, tokens.RefreshToken)

	s.mu.Lock()
	s.generation++
	gen := s.generation
	u := user
	s.user = &u
	s.profile = nil
	s.tokens = tokens
	s.state = StateNoProfile
	s.mu.Unlock()

	// Profile loads without blocking the sign-in result; the state machine
	// flips to authenticated when it lands.
	go s.refreshProfile(context.Background(), user.ID, gen)

	return s.Snapshot()
}

func (s *Store) refreshProfile(ctx context.Context, userID string, gen uint64) {
	p, err := s.profiles.Get(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		// Signed out or signed in again while the fetch was in flight.
		return
	}
	if err != nil {
		log.Printf("session: profile fetch for %s: %v", userID, err)
		return
	}
	s.profile = &p
	s.state = StateAuthenticated
}

func (s *Store) reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.user = nil
	s.profile = nil
	s.tokens = auth.TokenResponse{}
	s.state = StateAnonymous
	return Snapshot{State: StateAnonymous}
}

func (s *Store) fail(err error) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.user = nil
	s.profile = nil
	s.tokens = auth.TokenResponse{}
	s.state = StateFailed
	return Snapshot{State: StateFailed, Error: err.Error()}
}

func (s *Store) tokenKey() string {
	return "session:" + s.clientID
}

func (s *Store) persistToken(ctx context.Context, token string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, s.tokenKey(), token, tokenTTL).Err(); err != nil {
		log.Printf("session: persisting token: %v", err)
	}
}

func (s *Store) loadToken(ctx context.Context) (string, error) {
	if s.redis == nil {
		return "", nil
	}
	token, err := s.redis.Get(ctx, s.tokenKey()).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *Store) clearToken(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, s.tokenKey()).Err(); err != nil {
		log.Printf("session: clearing token: %v", err)
	}
}
