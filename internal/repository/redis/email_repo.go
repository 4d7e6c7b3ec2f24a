package redis

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultEmailCodeTTL = 5 * time.Minute
	EmailCodePrefix     = "email:code"
)

var (
	ErrEmailCodeSetFailed = errors.New("email code set failed")
	ErrEmailCodeNotFound  = errors.New("email code not found")
	ErrEmailCodeMismatch  = errors.New("email code mismatch")
)

type EmailRepository struct{}

func codeKey(scope, email string) string {
	return fmt.Sprintf("%s:%s:%s", EmailCodePrefix, scope, email)
}

// SetCode 写入验证码并设置 TTL
func (e *EmailRepository) SetCode(scope, email, code string) error {
	if err := Client.Set(context.Background(), codeKey(scope, email), code, DefaultEmailCodeTTL).Err(); err != nil {
		return ErrEmailCodeSetFailed
	}
	return nil
}

// ConsumeCode 校验并一次性删除，lua 保证比对+删除原子
func (e *EmailRepository) ConsumeCode(scope, email, code string) error {
	script := `
local val = redis.call("GET", KEYS[1])
if not val then
  return -1
end
if val ~= ARGV[1] then
  return 0
end
redis.call("DEL", KEYS[1])
return 1
`
	res := Client.Eval(context.Background(), script, []string{codeKey(scope, email)}, code)
	if err := res.Err(); err != nil {
		return ErrEmailCodeNotFound
	}
	n, _ := res.Int()
	switch n {
	case 1:
		return nil
	case 0:
		return ErrEmailCodeMismatch
	default:
		return ErrEmailCodeNotFound
	}
}

func (e *EmailRepository) DeleteCode(scope, email string) error {
	return Client.Del(context.Background(), codeKey(scope, email)).Err()
}
