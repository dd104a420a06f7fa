package auth

import (
	"strconv"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/config"
	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/database/users"
	"github.com/yahayabawa/maktaba/internal/entities"
)

// Service implements the account pipeline: registration hashes the
// password, then the repository assigns the membership ID, then the record
// is persisted. Each step is explicit so ordering and failures are visible.
type Service struct {
	users  *users.Repository
	tokens *TokenManager
	cost   int
}

// NewService creates an auth service backed by the user repository.
func NewService(db *database.Database, cfg config.Auth) *Service {
	return &Service{
		users:  users.NewRepository(db.DB),
		tokens: NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry),
		cost:   cfg.BcryptCost,
	}
}

// Tokens exposes the token manager for middleware wiring.
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

// Register creates a new member account with the default role.
func (s *Service) Register(user *entities.User, password string) error {
	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}
	user.PasswordHash = hash
	user.Role = entities.RoleUser
	return s.users.Create(user)
}

// Login verifies credentials and returns a signed bearer token. Both an
// unknown email and a wrong password produce the same error so the endpoint
// does not reveal which emails are registered.
func (s *Service) Login(email, password string) (string, *entities.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return "", nil, apperror.NewUnauthenticated("invalid credentials")
	}
	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return "", nil, apperror.NewUnauthenticated("invalid credentials")
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", nil, apperror.Wrap(apperror.KindInternal, "failed to sign token", err)
	}
	return token, user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(userID uint, current, next string) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if err := CheckPassword(current, user.PasswordHash); err != nil {
		return apperror.NewUnauthenticated("current password is incorrect")
	}
	hash, err := HashPassword(next, s.cost)
	if err != nil {
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}
	return s.users.UpdatePassword(userID, hash)
}

// ResolveToken verifies a bearer token and loads the user it names. Loading
// from the store means deleted users and stale role claims are rejected
// even while the token itself is still valid.
func (s *Service) ResolveToken(token string) (*entities.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperror.NewUnauthenticated("invalid or expired token")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return nil, apperror.NewUnauthenticated("invalid token subject")
	}
	user, err := s.users.GetByID(uint(id))
	if err != nil {
		return nil, apperror.NewUnauthenticated("user no longer exists")
	}
	return user, nil
}
