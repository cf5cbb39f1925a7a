package service

import (
	"classroom_backend/internal/config"
	"classroom_backend/internal/model"
	"classroom_backend/internal/util"
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AccountStore 账号注册与登录所需的存储操作
type AccountStore interface {
	UserStore
	CreateUser(ctx context.Context, user *model.User) error
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
}

type AuthService struct {
	Users AccountStore
	Cfg   *config.JWTConfig
}

func NewAuthService(users AccountStore, cfg *config.JWTConfig) *AuthService {
	return &AuthService{Users: users, Cfg: cfg}
}

type RegisterReq struct {
	Username   string         `json:"username" binding:"required"`
	Password   string         `json:"password" binding:"required,min=6"`
	Email      string         `json:"email" binding:"required,email"`
	FirstName  string         `json:"firstName" binding:"required"`
	LastName   string         `json:"lastName" binding:"required"`
	MiddleName string         `json:"middleName"`
	Role       model.UserRole `json:"role"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterReq) (*model.User, error) {
	role := req.Role
	switch role {
	case "":
		role = model.Student
	case model.Student, model.Instructor:
	default:
		return nil, util.NewValidationError("unsupported role")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:   strings.TrimSpace(req.Username),
		Password:   string(hashed),
		Email:      strings.TrimSpace(req.Email),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		Role:       role,
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, util.NewValidationError("username or email already exists")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.Users.FindUserByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if user.IsArchived {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.Secret, s.Cfg.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.Users.FindUserByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("user not found")
		}
		return nil, err
	}
	return user, nil
}
