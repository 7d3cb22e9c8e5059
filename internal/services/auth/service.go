// Package auth handles merchant and admin authentication for the
// redemption and approval endpoints.
package auth

import (
	"errors"
	"fmt"
	"time"

	"nimwema/internal/models"
	"nimwema/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Service errors
var (
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrMerchantExists     = errors.New("merchant already registered")
)

type Service interface {
	Login(phone, password string) (string, *models.Merchant, error)
	Register(name, phone, password, location, role string) (*models.Merchant, error)
	ParseToken(tokenString string) (*models.MerchantClaims, error)
}

type service struct {
	repo      repositories.MerchantRepository
	jwtSecret string
	tokenTTL  time.Duration
}

// NewService creates a new auth service.
func NewService(repo repositories.MerchantRepository, jwtSecret string, tokenTTL time.Duration) Service {
	if repo == nil {
		panic("merchant repository is required")
	}
	if jwtSecret == "" {
		panic("jwt secret is required")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &service{
		repo:      repo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (s *service) Login(phone, password string) (string, *models.Merchant, error) {
	m, err := s.repo.GetByPhone(phone)
	if err != nil {
		if err == repositories.ErrMerchantNotFound {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := &models.MerchantClaims{
		MerchantID: m.ID,
		Name:       m.Name,
		Phone:      m.Phone,
		Role:       m.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, m, nil
}

func (s *service) Register(name, phone, password, location, role string) (*models.Merchant, error) {
	if _, err := s.repo.GetByPhone(phone); err == nil {
		return nil, ErrMerchantExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if role != models.RoleAdmin {
		role = models.RoleMerchant
	}

	m := &models.Merchant{
		Name:         name,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         role,
		Location:     location,
	}
	if err := s.repo.Create(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) ParseToken(tokenString string) (*models.MerchantClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.MerchantClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*models.MerchantClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
