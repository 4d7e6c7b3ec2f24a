package service

import (
	"errors"

	"civichub/internal/apperr"
	"civichub/internal/pkg"
	redisrepo "civichub/internal/repository/redis"
)

type EmailService struct {
	emailCfg pkg.SMTPConfig
	rds      *redisrepo.EmailRepository
}

func NewEmailService(cfg pkg.SMTPConfig) *EmailService {
	return &EmailService{emailCfg: cfg, rds: &redisrepo.EmailRepository{}}
}

var validScopes = map[string]string{
	"register": "account registration",
	"reset":    "password reset",
}

// SendCode 生成验证码，写 redis 再发邮件；发送失败就删码
func (s *EmailService) SendCode(scope, email string) error {
	action, ok := validScopes[scope]
	if !ok {
		return apperr.Validation("unknown scope")
	}
	if email == "" {
		return apperr.Validation("email required")
	}

	code, err := pkg.RandDigits(6)
	if err != nil {
		return apperr.Internal(err)
	}
	if err = s.rds.SetCode(scope, email, code); err != nil {
		return apperr.Internal(err)
	}

	html := pkg.EmailCodeHTML(action, code, redisrepo.DefaultEmailCodeTTL)
	if err = pkg.SendEmail(s.emailCfg, email, "CivicHub verification code", html); err != nil {
		_ = s.rds.DeleteCode(scope, email)
		return apperr.Internal(err)
	}
	return nil
}

// VerifyCode 一次性校验，成功即删
func (s *EmailService) VerifyCode(scope, email, code string) error {
	if code == "" {
		return apperr.Validation("verification code required")
	}
	err := s.rds.ConsumeCode(scope, email, code)
	if errors.Is(err, redisrepo.ErrEmailCodeMismatch) || errors.Is(err, redisrepo.ErrEmailCodeNotFound) {
		return apperr.Validation("invalid or expired verification code")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}
