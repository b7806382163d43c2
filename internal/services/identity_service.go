package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/repositories"
	"travelcheckout/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var errBadCredentials = domain.UnauthorizedError{Msg: "wrong email/username or password"}

// Claims of an access token.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IdentityService signs travelers in and answers "who is this token".
type IdentityService struct {
	Users  repositories.UserRepository
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (s IdentityService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login checks the password of login (email or username) and issues a token.
func (s IdentityService) Login(ctx context.Context, login, password string) (string, models.User, error) {
	u, err := s.Users.FindByLogin(ctx, login)
	if err != nil {
		if domain.IsNotFound(err) || domain.IsValidation(err) {
			return "", models.User{}, errBadCredentials
		}
		return "", models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", models.User{}, errBadCredentials
	}
	if u.Status != "" && !strings.EqualFold(u.Status, "active") {
		return "", models.User{}, domain.UnauthorizedError{Msg: "account is not active"}
	}
	token, err := s.IssueToken(u)
	if err != nil {
		return "", models.User{}, err
	}
	return token, u, nil
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

func (s IdentityService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	u := models.User{
		Name:     utils.NormalizeSpace(in.Name),
		Surname:  utils.NormalizeSpace(in.Surname),
		Username: strings.TrimSpace(in.Username),
		Email:    utils.NormalizeEmail(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Address:  utils.NormalizeSpace(in.Address),
		Role:     "user",
		Status:   "active",
	}
	switch {
	case u.Name == "":
		return models.User{}, domain.ValidationError{Field: "name", Msg: "name is required"}
	case !utils.LooksLikeEmail(u.Email):
		return models.User{}, domain.ValidationError{Field: "email", Msg: "email is not valid"}
	case len(in.Password) < 8:
		return models.User{}, domain.ValidationError{Field: "password", Msg: "password must have at least 8 characters"}
	}
	if u.Username == "" {
		u.Username = u.Email
	}

	exists, err := s.Users.Exists(ctx, u.Email, u.Username)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, domain.ConflictError{Resource: "user", Msg: "email or username already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "hash password", Err: err}
	}
	u.PasswordHash = string(hash)
	id, err := s.Users.Create(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	u.ID = id
	return u, nil
}

// IssueToken signs an HS256 token for u.
func (s IdentityService) IssueToken(u models.User) (string, error) {
	if len(s.Secret) == 0 {
		return "", domain.InternalError{Msg: "jwt secret not configured"}
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", domain.InternalError{Msg: "sign token", Err: err}
	}
	return signed, nil
}

// ParseToken verifies raw and returns its claims.
func (s IdentityService) ParseToken(raw string) (Claims, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return Claims{}, domain.UnauthorizedError{Msg: "missing token"}
	}
	var c Claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, domain.UnauthorizedError{Msg: "token expired", Err: err}
		}
		return Claims{}, domain.UnauthorizedError{Msg: "invalid token", Err: err}
	}
	if c.UserID <= 0 {
		return Claims{}, domain.UnauthorizedError{Msg: "invalid token"}
	}
	return c, nil
}

// Me returns the identity of the token's user.
func (s IdentityService) Me(ctx context.Context, userID int64) (models.Identity, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Identity{}, domain.UnauthorizedError{Msg: "user no longer exists", Err: err}
		}
		return models.Identity{}, err
	}
	return u.Identity(), nil
}
