// Package accounts signs users up and in. A logged-in user is carried
// either by the session cookie or by a bearer token issued here.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/models"
)

// ErrInvalidToken is returned by ParseToken for any token it rejects.
var ErrInvalidToken = errors.New("invalid or expired token")

// Service owns user accounts and bearer tokens.
type Service struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
}

// NewService signs tokens with jwtSecret; they expire after ttl.
func NewService(db *gorm.DB, jwtSecret string, ttl time.Duration) *Service {
	return &Service{db: db, secret: []byte(jwtSecret), ttl: ttl}
}

// SignupInput is the signup request. Its binding tags are enforced at
// the request boundary.
type SignupInput struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Signup creates a plain user. Seller status comes later, through seller
// registration.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" {
		return nil, apperr.Validation("username", "This field may not be blank.")
	}

	var u models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.Validation("username", "A user with that username already exists.")
		}
		if email != "" {
			if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return apperr.Validation("email", "user with this email already exists.")
			}
		}
		hash, err := models.HashPassword(in.Password)
		if err != nil {
			return err
		}
		u = models.User{Username: username, PasswordHash: hash}
		if email != "" {
			u.Email = &email
		}
		return tx.Create(&u).Error
	})
	if err != nil {
		return nil, err
	}
	slog.Info("User signed up", "user_id", u.ID)
	return &u, nil
}

// Login checks credentials. ident is a username or, when it contains "@",
// an email.
func (s *Service) Login(ctx context.Context, ident, password string) (*models.User, error) {
	ident = strings.TrimSpace(ident)
	q := s.db.WithContext(ctx)
	if strings.Contains(ident, "@") {
		q = q.Where("email = ?", strings.ToLower(ident))
	} else {
		q = q.Where("username = ?", ident)
	}
	var u models.User
	if err := q.First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, err
	}
	if !models.CheckPassword(u.PasswordHash, password) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	return &u, nil
}

// User loads a user by id; the middleware calls it on every authenticated
// request so is_seller is always current.
func (s *Service) User(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// IssueToken signs an HS256 token whose subject is the user id.
func (s *Service) IssueToken(u *models.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(u.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken validates a token and returns the user id it names.
func (s *Service) ParseToken(raw string) (uint, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
