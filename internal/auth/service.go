package auth

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	userDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/user"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetUserWithPermissions(ctx context.Context, userID int64) (*User, error)
	TouchLastLogin(ctx context.Context, userID int64, at time.Time) error
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserWithPermissions(ctx context.Context, userID int64) (*User, error)
}

type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGeneratorAPI
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns tokens. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("failed to load user for login", "error", err)
		return AuthTokens{}, err
	}
	if u == nil {
		return AuthTokens{}, errors.ErrInvalidCredentials
	}
	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login rejected", "user_id", u.ID)
		return AuthTokens{}, errors.ErrInvalidCredentials
	}
	if !u.IsActive {
		return AuthTokens{}, errors.ErrUserInactive
	}

	tokens, err := s.issue(u.ID, u.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	if err := s.repo.TouchLastLogin(ctx, u.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to record last login", "error", err, "user_id", u.ID)
	}
	s.logger.Info("user logged in", "user_id", u.ID)
	return tokens, nil
}

// RefreshTokens rotates both tokens. The user must still exist and be active.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return AuthTokens{}, errors.ErrInvalidToken
	}
	u, err := s.repo.GetUserWithPermissions(ctx, userID)
	if err != nil {
		return AuthTokens{}, err
	}
	if u == nil {
		return AuthTokens{}, errors.ErrUserInactive
	}

	return s.issue(u.ID, u.Email)
}

func (s *Service) issue(userID int64, email string) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(userID, email)
	if err != nil {
		return AuthTokens{}, err
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(userID, email)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokenGenerator.AccessTTL().Seconds()),
	}, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// GetUserWithPermissions returns ErrUserInactive for unknown or disabled users.
func (s *Service) GetUserWithPermissions(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetUserWithPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.ErrUserInactive
	}
	return u, nil
}

func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
