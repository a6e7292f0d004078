package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/ports"
	"github.com/gabrielmilitaosantos/acquisitions/internal/infrastructure/metrics"
)

// tokenClaims is the JWT payload. Subject holds the user id and ID the
// token id used for revocation.
type tokenClaims struct {
	Role  domain.Role `json:"role"`
	Email string      `json:"email"`
	jwt.RegisteredClaims
}

// AuthService implements sign-up, sign-in, sign-out and token verification.
type AuthService struct {
	repo        ports.CredentialRepository
	revocations ports.RevocationStore // optional
	jwtSecret   []byte
	tokenTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

func NewAuthService(
	repo ports.CredentialRepository,
	revocations ports.RevocationStore,
	jwtSecret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:        repo,
		revocations: revocations,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
		logger:      logger,
		now:         time.Now,
	}
}

// SignUp registers a regular user. Admins are never created here.
func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user, err := s.repo.Create(ctx, &domain.Credentials{
		User: domain.User{
			Name:      in.Name,
			Email:     in.Email,
			Role:      domain.RoleUser,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

// SignIn checks the password and issues a token. An unknown email and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*ports.IssuedToken, *domain.User, error) {
	creds, err := s.repo.FindCredentials(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("sign in: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)) != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(&creds.User)
	if err != nil {
		return nil, nil, fmt.Errorf("sign in: %w", err)
	}
	metrics.AuthAttemptsTotal.WithLabelValues("ok").Inc()

	user := creds.User
	return token, &user, nil
}

// SignOut revokes the presented token until its natural expiry.
func (s *AuthService) SignOut(ctx context.Context, token *ports.VerifiedToken) error {
	if s.revocations == nil || token == nil || token.TokenID == "" {
		return nil
	}
	if err := s.revocations.RevokeToken(ctx, token.TokenID, token.ExpiresAt); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// Verify validates signature, algorithm, expiry and revocation state of raw.
// Any failure is reported as domain.ErrInvalidToken.
func (s *AuthService) Verify(ctx context.Context, raw string) (*ports.VerifiedToken, error) {
	claims := &tokenClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.jwtSecret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 || !claims.Role.Valid() {
		return nil, domain.ErrInvalidToken
	}

	verified := &ports.VerifiedToken{
		Identity:  domain.Identity{ID: id, Role: claims.Role},
		Email:     claims.Email,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		verified.IssuedAt = claims.IssuedAt.Time
	}

	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, verified)
		if err != nil {
			s.logger.Warn().Err(err).Int64("user_id", id).Msg("revocation check failed, accepting token")
		} else if revoked {
			return nil, domain.ErrInvalidToken
		}
	}

	return verified, nil
}

func (s *AuthService) generateToken(user *domain.User) (*ports.IssuedToken, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := tokenClaims{
		Role:  user.Role,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &ports.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}
