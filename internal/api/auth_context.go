package api

import (
	"context"
	"strings"

	domainerrors "github.com/seohyun-lee/bookduck-backend/internal/errors"
)

// authenticateRequest validates the Authorization header and returns the user ID.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (string, error) {
	if authHeader == "" {
		return "", domainerrors.Unauthenticated("missing authorization header")
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", domainerrors.Unauthenticated("invalid authorization header format")
	}

	user, err := s.services.Auth.VerifyAccessToken(ctx, token)
	if err != nil {
		return "", err
	}

	return user.ID, nil
}
