package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/internal/users"
	pkgAuth "github.com/paddockshare/paddockshare-backend/pkg/auth"
	"github.com/paddockshare/paddockshare-backend/pkg/auth/session"
	"github.com/paddockshare/paddockshare-backend/pkg/config"
	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/security"
)

type stubUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newStubUserRepo(seed ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{
		byEmail: make(map[string]*models.User),
		byID:    make(map[uuid.UUID]*models.User),
	}
	for _, u := range seed {
		repo.byEmail[u.Email] = u
		repo.byID[u.ID] = u
	}
	return repo
}

func (r *stubUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	user.ID = uuid.New()
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	return user, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSessions struct {
	tokens  map[string]string
	revoked []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{tokens: make(map[string]string)}
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.tokens, oldAccessID)
	newID := session.NewAccessID()
	newToken := "refresh-" + newID
	s.tokens[newID] = newToken
	return newID, newToken, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	delete(s.tokens, accessID)
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "paddockshare",
		ExpirationMinutes: 30,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func newTestService(t *testing.T, repo userRepository, sessions sessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRegisterIssuesOwnerToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo, newStubSessions())

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "New.Owner@Example.com",
		Password:    "a-long-password",
		DisplayName: "New Owner",
		AcceptTOS:   true,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.MemberRoleOwner {
		t.Fatalf("expected owner role, got %s", claims.Role)
	}
	if resp.User.Email != "new.owner@example.com" {
		t.Fatalf("expected lowercased email, got %s", resp.User.Email)
	}
	if resp.RefreshToken == "" {
		t.Fatal("expected refresh token")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	existing := &models.User{
		ID:           uuid.New(),
		Email:        "taken@example.com",
		PasswordHash: "x",
		DisplayName:  "Existing",
		Role:         enums.MemberRoleOwner,
	}
	svc := newTestService(t, newStubUserRepo(existing), newStubSessions())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "taken@example.com",
		Password:    "a-long-password",
		DisplayName: "Someone Else",
		AcceptTOS:   true,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterRequiresTOS(t *testing.T) {
	svc := newTestService(t, newStubUserRepo(), newStubSessions())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "someone@example.com",
		Password:    "a-long-password",
		DisplayName: "Someone",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginValidCredentials(t *testing.T) {
	password := "owner-secret-pass"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "owner@example.com",
		PasswordHash: mustHashPassword(t, password),
		DisplayName:  "Owner",
		Role:         enums.MemberRoleOwner,
	}
	svc := newTestService(t, newStubUserRepo(user), newStubSessions())

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Owner@Example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, claims.UserID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "owner@example.com",
		PasswordHash: mustHashPassword(t, "right-password"),
		DisplayName:  "Owner",
		Role:         enums.MemberRoleOwner,
	}
	svc := newTestService(t, newStubUserRepo(user), newStubSessions())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "owner@example.com",
		Password: "wrong-password",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(t, newStubUserRepo(), newStubSessions())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever-secret",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	password := "owner-secret-pass"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "owner@example.com",
		PasswordHash: mustHashPassword(t, password),
		DisplayName:  "Owner",
		Role:         enums.MemberRoleOwner,
	}
	sessions := newStubSessions()
	svc := newTestService(t, newStubUserRepo(user), sessions)

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	pair, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.AccessToken == login.AccessToken {
		t.Fatal("expected a new access token")
	}

	// The rotated-out refresh token must not work a second time.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on reuse, got %v", err)
	}
}

func TestRefreshRejectsBogusToken(t *testing.T) {
	svc := newTestService(t, newStubUserRepo(), newStubSessions())

	_, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  "not-a-jwt",
		RefreshToken: "nope",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := newStubSessions()
	svc := newTestService(t, newStubUserRepo(), sessions)

	if err := svc.Logout(context.Background(), "access-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-1" {
		t.Fatalf("expected revoke call, got %v", sessions.revoked)
	}

	err := svc.Logout(context.Background(), " ")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for blank access id, got %v", err)
	}
}
