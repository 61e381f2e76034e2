// Package auth resolves bearer tokens to a user identity and its
// capability set. The core packages receive only the resolved user id;
// permission checks stop at the HTTP boundary.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jcmexdev/shop-api/internal/pkg/cache"
)

// ErrInvalidToken is returned for unknown, revoked or empty tokens.
var ErrInvalidToken = errors.New("auth: invalid token")

// Permission is a capability an endpoint may require.
type Permission string

const (
	PermViewBasket    Permission = "view_basket"
	PermChangeBasket  Permission = "change_basket"
	PermAddProduct    Permission = "add_product"
	PermChangeProduct Permission = "change_product"
	PermDeleteProduct Permission = "delete_product"
	PermAddShop       Permission = "add_shop"
	PermChangeShop    Permission = "change_shop"
)

// Identity is a resolved, pre-authenticated caller.
type Identity struct {
	UserID      int64        `json:"user_id"`
	Username    string       `json:"username"`
	Permissions []Permission `json:"permissions"`
}

// Can reports whether the identity holds the permission.
func (id Identity) Can(p Permission) bool {
	for _, held := range id.Permissions {
		if held == p {
			return true
		}
	}
	return false
}

// Repository is the storage port for users and tokens.
type Repository interface {
	IdentityByToken(ctx context.Context, token string) (Identity, error)
}

// identityTTL bounds how long a revoked token keeps working through the
// cache.
const identityTTL = 5 * time.Minute

// Service authenticates tokens with a Redis read-through cache in front of
// the user store.
type Service struct {
	repo  Repository
	cache cache.Cache
}

func NewService(repo Repository, c cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

// Authenticate resolves a bearer token to an Identity.
func (s *Service) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	key := s.cache.GenerateKey("token", token)
	if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
		var id Identity
		if err := json.Unmarshal([]byte(raw), &id); err == nil {
			return id, nil
		}
	}

	id, err := s.repo.IdentityByToken(ctx, token)
	if err != nil {
		return Identity{}, err
	}

	if b, err := json.Marshal(id); err == nil {
		// Best effort: a Redis outage must not block logins.
		if err := s.cache.Set(ctx, key, string(b), identityTTL); err != nil {
			slog.WarnContext(ctx, "failed to cache identity", "error", err)
		}
	}

	return id, nil
}
