package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        Prefix + "/users/me",
		Summary:     "Get current user",
		Description: "Returns the signed-in user with level, experience and unlocked badges",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCurrentUser",
		Method:      http.MethodDelete,
		Path:        Prefix + "/users/me",
		Summary:     "Delete account",
		Description: "Deletes the account and everything it owns",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleDeleteCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "evaluateBadges",
		Method:      http.MethodPost,
		Path:        Prefix + "/users/me/badges/evaluate",
		Summary:     "Evaluate badges",
		Description: "Re-checks every badge rule and records newly earned badges. Safe to repeat.",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleEvaluateBadges)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBadges",
		Method:      http.MethodGet,
		Path:        Prefix + "/badges",
		Summary:     "List badges",
		Description: "Returns every badge that can be earned",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleListBadges)
}

// AuthenticatedInput is the input of operations that take nothing but a token.
type AuthenticatedInput struct {
	Authorization string `header:"Authorization"`
}

// ProfileOutput wraps the profile for Huma.
type ProfileOutput struct {
	Body *domain.Profile
}

// UnlocksResponse lists badge unlocks.
type UnlocksResponse struct {
	Unlocked []*domain.BadgeUnlock `json:"unlocked" doc:"Badges unlocked by this request"`
}

// UnlocksOutput wraps badge unlocks for Huma.
type UnlocksOutput struct {
	Body UnlocksResponse
}

// BadgeCatalogResponse lists every badge.
type BadgeCatalogResponse struct {
	Badges []domain.Badge `json:"badges" doc:"Every badge tier"`
}

// BadgeCatalogOutput wraps the badge catalog for Huma.
type BadgeCatalogOutput struct {
	Body BadgeCatalogResponse
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *AuthenticatedInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Account.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: profile}, nil
}

func (s *Server) handleDeleteCurrentUser(ctx context.Context, input *AuthenticatedInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Account.Delete(ctx, userID); err != nil {
		return nil, err
	}
	return message("Account deleted"), nil
}

func (s *Server) handleEvaluateBadges(ctx context.Context, input *AuthenticatedInput) (*UnlocksOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.services.Progression.EvaluateBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	if unlocked == nil {
		unlocked = []*domain.BadgeUnlock{}
	}
	return &UnlocksOutput{Body: UnlocksResponse{Unlocked: unlocked}}, nil
}

func (s *Server) handleListBadges(ctx context.Context, input *AuthenticatedInput) (*BadgeCatalogOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}
	return &BadgeCatalogOutput{Body: BadgeCatalogResponse{Badges: s.services.Progression.BadgeCatalog()}}, nil
}
