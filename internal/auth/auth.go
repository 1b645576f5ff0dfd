package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

const (
	PermissionAdmin          = "admin"
	PermissionManageVouchers = "manage_vouchers"
	PermissionManageProducts = "manage_products"
	PermissionManageOrders   = "manage_orders"
	PermissionViewReports    = "view_reports"
)

// AllPermissions is seeded into the permissions table.
var AllPermissions = []string{
	PermissionAdmin,
	PermissionManageVouchers,
	PermissionManageProducts,
	PermissionManageOrders,
	PermissionViewReports,
}

// User is the authenticated back-office user carried on the request context.
type User struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}

// HasPermission is true for admins regardless of the permission asked for.
func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission || p == PermissionAdmin {
			return true
		}
	}
	return false
}

func (u *User) HasAnyPermission(permissions []string) bool {
	for _, p := range permissions {
		if u.HasPermission(p) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	for _, p := range u.Permissions {
		if p == PermissionAdmin {
			return true
		}
	}
	return false
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok && u != nil
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}
