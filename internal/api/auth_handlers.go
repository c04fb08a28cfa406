package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          Prefix + "/auth/register",
		Summary:       "Register",
		Description:   "Creates an account with a fresh level-1 ledger and signs it in",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        Prefix + "/auth/login",
		Summary:     "Login",
		Description: "Exchanges email and password for an access token",
		Tags:        []string{"Auth"},
	}, s.handleLogin)
}

// RegisterRequest is the request body for registration.
type RegisterRequest struct {
	Email    string `json:"email" doc:"Account email"`
	Password string `json:"password" doc:"Password, at least 8 characters"`
	Nickname string `json:"nickname" doc:"Display name"`
}

// RegisterInput wraps the registration request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" doc:"Account email"`
	Password string `json:"password" doc:"Password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// AuthOutput wraps a signed-in user for Huma.
type AuthOutput struct {
	Body *service.AuthResponse
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	res, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Nickname: input.Body.Nickname,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: res}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	res, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: res}, nil
}
