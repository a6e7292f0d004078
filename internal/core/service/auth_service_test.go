package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/ports"
)

type stubCredentialRepo struct {
	byEmail map[string]*domain.Credentials
	nextID  int64
}

func newStubCredentialRepo() *stubCredentialRepo {
	return &stubCredentialRepo{byEmail: make(map[string]*domain.Credentials), nextID: 1}
}

func (r *stubCredentialRepo) Create(_ context.Context, c *domain.Credentials) (*domain.User, error) {
	if _, exists := r.byEmail[c.Email]; exists {
		return nil, domain.ErrEmailTaken
	}
	stored := *c
	stored.ID = r.nextID
	r.nextID++
	r.byEmail[c.Email] = &stored
	user := stored.User
	return &user, nil
}

func (r *stubCredentialRepo) FindCredentials(_ context.Context, email string) (*domain.Credentials, error) {
	c, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *c
	return &clone, nil
}

type stubRevocations struct {
	revokedTokens map[string]time.Time
	revokedUsers  map[int64]time.Time
	err           error
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{
		revokedTokens: make(map[string]time.Time),
		revokedUsers:  make(map[int64]time.Time),
	}
}

func (s *stubRevocations) RevokeToken(_ context.Context, id string, until time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.revokedTokens[id] = until
	return nil
}

func (s *stubRevocations) RevokeUser(_ context.Context, id int64, at time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.revokedUsers[id] = at
	return nil
}

func (s *stubRevocations) IsRevoked(_ context.Context, t *ports.VerifiedToken) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.revokedTokens[t.TokenID]; ok {
		return true, nil
	}
	at, ok := s.revokedUsers[t.Identity.ID]
	return ok && !t.IssuedAt.After(at), nil
}

func newAuthSvc(repo *stubCredentialRepo, rev *stubRevocations) *AuthService {
	var store ports.RevocationStore
	if rev != nil {
		store = rev
	}
	return NewAuthService(repo, store, "secret", time.Hour, zerolog.Nop())
}

func seedCredentials(t *testing.T, repo *stubCredentialRepo, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user, err := repo.Create(context.Background(), &domain.Credentials{
		User:         domain.User{Name: "Seed", Email: email, Role: role},
		PasswordHash: string(hash),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return user
}

func TestAuthService_SignUp_Success(t *testing.T) {
	repo := newStubCredentialRepo()
	svc := newAuthSvc(repo, nil)

	user, err := svc.SignUp(context.Background(), ports.SignUpInput{Name: "Alice", Email: "alice@example.com", Password: "pass123"})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected role user, got %s", user.Role)
	}

	stored := repo.byEmail["alice@example.com"]
	if stored.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_SignUp_EmailTaken(t *testing.T) {
	repo := newStubCredentialRepo()
	svc := newAuthSvc(repo, nil)
	seedCredentials(t, repo, "alice@example.com", "pass123", domain.RoleUser)

	_, err := svc.SignUp(context.Background(), ports.SignUpInput{Name: "Alice", Email: "alice@example.com", Password: "x"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_SignIn_IssuesVerifiableToken(t *testing.T) {
	repo := newStubCredentialRepo()
	svc := newAuthSvc(repo, nil)
	seeded := seedCredentials(t, repo, "admin@example.com", "pass123", domain.RoleAdmin)

	token, user, err := svc.SignIn(context.Background(), "admin@example.com", "pass123")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if user.ID != seeded.ID {
		t.Fatalf("unexpected user: %+v", user)
	}

	verified, err := svc.Verify(context.Background(), token.Value)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if verified.Identity.ID != seeded.ID || verified.Identity.Role != domain.RoleAdmin {
		t.Fatalf("unexpected identity: %+v", verified.Identity)
	}
	if verified.TokenID == "" {
		t.Fatalf("expected token id")
	}
}

func TestAuthService_SignIn_InvalidCredentials(t *testing.T) {
	repo := newStubCredentialRepo()
	svc := newAuthSvc(repo, nil)
	seedCredentials(t, repo, "alice@example.com", "pass123", domain.RoleUser)

	if _, _, err := svc.SignIn(context.Background(), "alice@example.com", "wrong"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, _, err := svc.SignIn(context.Background(), "ghost@example.com", "pass123"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func signRaw(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestAuthService_Verify_Rejects(t *testing.T) {
	svc := newAuthSvc(newStubCredentialRepo(), nil)
	now := time.Now()
	valid := jwt.RegisteredClaims{
		Subject:   "7",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))

	noExpiry := valid
	noExpiry.ExpiresAt = nil

	badSubject := valid
	badSubject.Subject = "abc"

	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", signRaw(t, jwt.SigningMethodHS256, []byte("other"), tokenClaims{Role: domain.RoleUser, RegisteredClaims: valid})},
		{"wrong algorithm", signRaw(t, jwt.SigningMethodHS512, []byte("secret"), tokenClaims{Role: domain.RoleUser, RegisteredClaims: valid})},
		{"expired", signRaw(t, jwt.SigningMethodHS256, []byte("secret"), tokenClaims{Role: domain.RoleUser, RegisteredClaims: expired})},
		{"no expiry", signRaw(t, jwt.SigningMethodHS256, []byte("secret"), tokenClaims{Role: domain.RoleUser, RegisteredClaims: noExpiry})},
		{"non numeric subject", signRaw(t, jwt.SigningMethodHS256, []byte("secret"), tokenClaims{Role: domain.RoleUser, RegisteredClaims: badSubject})},
		{"unknown role", signRaw(t, jwt.SigningMethodHS256, []byte("secret"), tokenClaims{Role: "root", RegisteredClaims: valid})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(context.Background(), tt.raw); err != domain.ErrInvalidToken {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestAuthService_SignOut_RevokesToken(t *testing.T) {
	repo := newStubCredentialRepo()
	rev := newStubRevocations()
	svc := newAuthSvc(repo, rev)
	seedCredentials(t, repo, "alice@example.com", "pass123", domain.RoleUser)

	token, _, err := svc.SignIn(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	verified, err := svc.Verify(context.Background(), token.Value)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if err := svc.SignOut(context.Background(), verified); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := svc.Verify(context.Background(), token.Value); err != domain.ErrInvalidToken {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}

func TestAuthService_Verify_RevokedUser(t *testing.T) {
	repo := newStubCredentialRepo()
	rev := newStubRevocations()
	svc := newAuthSvc(repo, rev)
	user := seedCredentials(t, repo, "alice@example.com", "pass123", domain.RoleUser)

	token, _, _ := svc.SignIn(context.Background(), "alice@example.com", "pass123")
	rev.revokedUsers[user.ID] = time.Now().Add(time.Second)

	if _, err := svc.Verify(context.Background(), token.Value); err != domain.ErrInvalidToken {
		t.Fatalf("expected token of revoked user to be rejected, got %v", err)
	}
}

func TestAuthService_Verify_FailsOpenOnStoreError(t *testing.T) {
	repo := newStubCredentialRepo()
	rev := newStubRevocations()
	svc := newAuthSvc(repo, rev)
	user := seedCredentials(t, repo, "alice@example.com", "pass123", domain.RoleUser)

	token, _, _ := svc.SignIn(context.Background(), "alice@example.com", "pass123")
	rev.err = errors.New("redis down")

	verified, err := svc.Verify(context.Background(), token.Value)
	if err != nil {
		t.Fatalf("expected token accepted when store is down, got %v", err)
	}
	if verified.Identity.ID != user.ID {
		t.Fatalf("unexpected identity: %+v", verified.Identity)
	}
}
