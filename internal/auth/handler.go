package auth

import (
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	"github.com/frahmantamala/petshop-commerce/internal/transport"
	"github.com/frahmantamala/petshop-commerce/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("Login: authentication failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleError(w, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.Logger.Warn("RefreshToken: token refresh failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		h.HandleError(w, errors.ErrInvalidToken)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// AuthMiddleware loads the bearer token's user, with permissions, into the
// request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Warn("AuthMiddleware: missing authorization token", "path", r.URL.Path)
			h.HandleError(w, errors.NewUnauthorizedError("Missing authorization token", errors.ErrCodeInvalidToken))
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("AuthMiddleware: token validation failed", "error", err)
			h.HandleError(w, err)
			return
		}

		uid, err := strconv.ParseInt(claims.UserID, 10, 64)
		if err != nil {
			h.Logger.Warn("AuthMiddleware: failed to parse user id from token claims", "value", claims.UserID, "error", err)
			h.HandleError(w, errors.ErrInvalidToken)
			return
		}

		u, err := h.Service.GetUserWithPermissions(r.Context(), uid)
		if err != nil {
			h.Logger.Warn("AuthMiddleware: failed to load user permissions", "user_id", uid, "error", err)
			h.HandleServiceError(w, err)
			return
		}

		ctx := WithUser(r.Context(), u)
		ctx = logger.With(ctx, "user_id", u.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
