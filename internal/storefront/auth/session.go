// Package auth хранит текущего пользователя витрины.
// Проверка ограничивается доменом почты: паролей и токенов нет.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/storage/kv"
)

const (
	// EmailDomain — единственный разрешённый домен почты.
	EmailDomain = "@dsce.in"
	// AdminEmail — адрес администратора магазина.
	AdminEmail = "admin" + EmailDomain
)

// Session — сессия поверх ключа "currentUser".
type Session struct {
	kv domain.KeyValueStore
}

// NewSession создаёт сессию над хранилищем.
func NewSession(store domain.KeyValueStore) *Session {
	return &Session{kv: store}
}

// Login запоминает пользователя. Адрес вне EmailDomain отклоняется с ErrEmailDomainNotAllowed.
func (s *Session) Login(ctx context.Context, email string) error {
	if !strings.HasSuffix(email, EmailDomain) {
		return fmt.Errorf("%w: only %s emails are allowed", domain.ErrEmailDomainNotAllowed, EmailDomain)
	}
	if err := kv.Save(ctx, s.kv, kv.KeyCurrentUser, email); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

// Logout забывает пользователя.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.kv.Remove(ctx, kv.KeyCurrentUser); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

// Current возвращает адрес текущего пользователя или "".
func (s *Session) Current(ctx context.Context) (string, error) {
	email, _, err := kv.Load[string](ctx, s.kv, kv.KeyCurrentUser)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return email, nil
}

func (s *Session) IsAuthenticated(ctx context.Context) (bool, error) {
	email, err := s.Current(ctx)
	return email != "", err
}

func (s *Session) IsAdmin(ctx context.Context) (bool, error) {
	email, err := s.Current(ctx)
	return email == AdminEmail, err
}
