package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"khidmaBack/internal/models"
	"khidmaBack/internal/repositories"
	"khidmaBack/utils"
)

const refreshTTL = 30 * 24 * time.Hour

type UserService struct {
	UserRepo *repositories.UserRepository
	Tokens   *utils.Manager
}

func (s *UserService) SignUp(ctx context.Context, req models.SignUpRequest) (models.User, error) {
	if req.Role != models.RoleClient && req.Role != models.RoleProvider {
		return models.User{}, fmt.Errorf("unsupported role %q", req.Role)
	}

	if _, err := s.UserRepo.GetUserByEmail(ctx, req.Email); err == nil {
		return models.User{}, models.ErrDuplicateEmail
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return models.User{}, err
	}
	if _, err := s.UserRepo.GetUserByPhone(ctx, req.Phone); err == nil {
		return models.User{}, models.ErrDuplicatePhone
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return models.User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.UserRepo.CreateUser(ctx, models.User{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
	})
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) SignIn(ctx context.Context, req models.SignInRequest) (models.User, models.Tokens, error) {
	var user models.User
	var err error
	switch {
	case req.Email != "":
		user, err = s.UserRepo.GetUserByEmail(ctx, req.Email)
	case req.Phone != "":
		user, err = s.UserRepo.GetUserByPhone(ctx, req.Phone)
	default:
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}
	if errors.Is(err, models.ErrUserNotFound) {
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, models.Tokens{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user.ID, user.Role)
	if err != nil {
		return models.User{}, models.Tokens{}, err
	}
	user.Password = ""
	return user, tokens, nil
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.Tokens, error) {
	session, err := s.UserRepo.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return models.Tokens{}, err
	}
	if session == (models.Session{}) || session.ExpiresAt.Before(time.Now()) {
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	if err := s.UserRepo.DeleteSession(ctx, refreshToken); err != nil {
		return models.Tokens{}, err
	}
	return s.issueTokens(ctx, session.UserID, session.Role)
}

func (s *UserService) issueTokens(ctx context.Context, userID int, role string) (models.Tokens, error) {
	access, err := s.Tokens.NewAccessToken(userID, role)
	if err != nil {
		return models.Tokens{}, err
	}
	refresh, err := s.Tokens.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}
	err = s.UserRepo.CreateSession(ctx, models.Session{
		UserID:       userID,
		Role:         role,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(refreshTTL),
	})
	if err != nil {
		return models.Tokens{}, err
	}
	return models.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (models.User, error) {
	user, err := s.UserRepo.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	updated, err := s.UserRepo.UpdateUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	updated.Password = ""
	return updated, nil
}

// UploadAvatar stores the image in object storage and saves the URL on the
// user record.
func (s *UserService) UploadAvatar(ctx context.Context, userID int, file []byte, fileName, contentType string) (string, error) {
	user, err := s.UserRepo.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}

	objectName := uuid.NewString() + filepath.Ext(fileName)
	url, err := utils.UploadFileToS3(file, objectName, "avatars", contentType)
	if err != nil {
		return "", err
	}

	user.AvatarPath = &url
	if _, err := s.UserRepo.UpdateUser(ctx, user); err != nil {
		return "", err
	}
	return url, nil
}

func (s *UserService) AddNotifyToken(ctx context.Context, userID int, token string) error {
	return s.UserRepo.InsertNotifyToken(ctx, userID, token)
}

func (s *UserService) RemoveNotifyToken(ctx context.Context, token string) error {
	return s.UserRepo.DeleteNotifyToken(ctx, token)
}
