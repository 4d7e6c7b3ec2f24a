package service

import (
	"errors"

	"civichub/internal/apperr"
	"civichub/internal/model"
	"civichub/internal/pkg"
	"civichub/internal/repository/mysql"
	redisrepo "civichub/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	repo     *mysql.UserRepository
	rUser    *redisrepo.UserRepository
	emailSvc *EmailService
}

func NewUserService(db *gorm.DB, emailSvc *EmailService) *UserService {
	return &UserService{
		repo:     mysql.NewUserRepository(db),
		rUser:    &redisrepo.UserRepository{},
		emailSvc: emailSvc,
	}
}

func (s *UserService) Register(username, password, email, code string) error {
	if username == "" || password == "" || email == "" {
		return apperr.Validation("username, password and email required")
	}
	if err := s.emailSvc.VerifyCode("register", email, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err)
	}

	user := &model.User{
		Username: username,
		Password: string(hash),
		Email:    email,
	}
	if err = s.repo.Create(user); err != nil {
		return apperr.Conflict("username or email already registered")
	}
	return nil
}

func (s *UserService) Login(username, password string) (*pkg.Pair, error) {
	user, err := s.repo.FindByUsername(username)
	if err != nil {
		return nil, apperr.Authorization("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperr.Authorization("invalid credentials")
	}

	token, err := pkg.GeneratePair(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	// 当前 token 写入 redis，实现单会话
	if err = s.rUser.AddUserToken(user.ID, token.AccessToken); err != nil {
		return nil, apperr.Internal(err)
	}
	return token, nil
}

func (s *UserService) Logout(usrID uint64) error {
	if err := s.rUser.DeleteUserToken(usrID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *UserService) ResetPassword(email, code, newPassword string) error {
	if newPassword == "" {
		return apperr.Validation("new password required")
	}
	if err := s.emailSvc.VerifyCode("reset", email, code); err != nil {
		return err
	}

	user, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err)
	}
	if err = s.repo.UpdatePassword(user, string(hash)); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *UserService) Refresh(refreshToken string) (*pkg.Pair, error) {
	pair, err := pkg.Refresh(refreshToken)
	if err != nil {
		return nil, apperr.Authorization(err.Error())
	}
	return pair, nil
}

// ChangePassword 登录态修改密码，成功后踢掉当前会话
func (s *UserService) ChangePassword(usrID uint64, oldPassword, newPassword string) error {
	if newPassword == "" {
		return apperr.Validation("new password required")
	}
	user, err := s.repo.FindByID(usrID)
	if err != nil {
		return notFoundOr(err, "user not found")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return apperr.Authorization("old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err)
	}
	if err = s.repo.UpdatePassword(user, string(hash)); err != nil {
		return apperr.Internal(err)
	}
	return s.Logout(usrID)
}
