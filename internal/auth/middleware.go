package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/hotel-pms/internal/models"
)

type contextKey string

const ProfileKey contextKey = "profile"

func WithProfile(ctx context.Context, profile *models.Profile) context.Context {
	return context.WithValue(ctx, ProfileKey, profile)
}

func ProfileFrom(ctx context.Context) (*models.Profile, bool) {
	profile, ok := ctx.Value(ProfileKey).(*models.Profile)
	return profile, ok && profile != nil
}

// RequireAdmin fails unless the signed-in staff member is an admin.
func RequireAdmin(ctx context.Context) error {
	profile, ok := ProfileFrom(ctx)
	if !ok {
		return huma.Error401Unauthorized("Unauthorized")
	}
	if !profile.IsAdmin() {
		return huma.Error403Forbidden("Forbidden: admin role required")
	}
	return nil
}

// Middleware authenticates every operation that declares a security
// requirement. The session token comes from a Bearer header or the session
// cookie; tokens past half their lifetime are renewed.
func (h *AuthHandler) Middleware(api huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if op := ctx.Operation(); op == nil || len(op.Security) == 0 {
			next(ctx)
			return
		}

		tokenString := bearerToken(ctx.Header("Authorization"))
		if tokenString == "" {
			tokenString = cookieValue(ctx.Header("Cookie"), CookieName)
		}
		if tokenString == "" {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "Unauthorized: No token found")
			return
		}

		email, exp, err := h.parseToken(tokenString)
		if err != nil {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "Unauthorized: Invalid token")
			return
		}

		profile, err := h.lookupProfile(ctx.Context(), email)
		if err != nil {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "Unauthorized: unknown staff member")
			return
		}

		// Sliding session: refresh token if it's more than halfway through its duration
		if time.Until(exp) < TokenDuration/2 {
			if newToken, err := h.GenerateToken(email); err == nil {
				ctx.AppendHeader("Set-Cookie", h.sessionCookie(newToken).String())
			}
		}

		next(huma.WithValue(ctx, ProfileKey, profile))
	}
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func cookieValue(header, name string) string {
	if header == "" {
		return ""
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return ""
	}
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
