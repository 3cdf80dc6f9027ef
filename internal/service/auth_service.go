package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"gigledger/internal/model"
	"gigledger/internal/repository"
	"gigledger/internal/util"
)

type AuthService struct {
	userRepo  *repository.UserRepository
	jwtSecret string
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

// Register creates a participant account bound to an address.
func (s *AuthService) Register(ctx context.Context, address model.Address, password string) (*model.User, error) {
	if address.IsZero() {
		return nil, errors.New("address required")
	}

	existing, err := s.userRepo.FindByAddress(ctx, address)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("address already exists")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Address:      address,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Login checks credentials and returns a JWT carrying the address claim.
func (s *AuthService) Login(ctx context.Context, address model.Address, password string) (string, error) {
	u, err := s.userRepo.FindByAddress(ctx, address)
	if err != nil {
		return "", errors.New("invalid address or password")
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return "", errors.New("invalid address or password")
	}

	token, err := util.GenerateJWT(u.Address, s.jwtSecret)
	if err != nil {
		return "", err
	}

	return token, nil
}
