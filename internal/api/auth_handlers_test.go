package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

func TestRegisterAndLogin(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post(Prefix+"/auth/register", map[string]any{
		"email":    "reader@example.com",
		"password": "correct horse battery",
		"nickname": "reader",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decodeEnvelope[service.AuthResponse](t, resp)
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	assert.NotEmpty(t, env.Data.AccessToken)
	assert.Equal(t, "reader@example.com", env.Data.User.Email)
	assert.NotContains(t, resp.Body.String(), "password")

	resp = ts.api.Post(Prefix+"/auth/login", map[string]any{
		"email":    "reader@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	login := decodeEnvelope[service.AuthResponse](t, resp)
	assert.Equal(t, env.Data.User.ID, login.Data.User.ID)

	resp = ts.api.Get(Prefix+"/users/me", bearerHeader(login.Data.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	profile := decodeEnvelope[domain.Profile](t, resp)
	assert.Equal(t, "reader", profile.Data.User.Nickname)
	assert.Equal(t, 1, profile.Data.Ledger.Level)
	assert.EqualValues(t, 100, profile.Data.Next)
}

func TestRegister_Errors(t *testing.T) {
	ts := setupTestServer(t)
	body := map[string]any{
		"email":    "dup@example.com",
		"password": "correct horse battery",
		"nickname": "dup",
	}
	require.Equal(t, http.StatusCreated, ts.api.Post(Prefix+"/auth/register", body).Code)

	t.Run("duplicate email", func(t *testing.T) {
		resp := ts.api.Post(Prefix+"/auth/register", body)
		requireError(t, resp, http.StatusConflict, "CONFLICT")
	})

	t.Run("invalid fields", func(t *testing.T) {
		resp := ts.api.Post(Prefix+"/auth/register", map[string]any{
			"email":    "not-an-email",
			"password": "short",
			"nickname": "x",
		})
		errBody := requireError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")
		assert.NotNil(t, errBody.Details)
	})

	t.Run("missing field", func(t *testing.T) {
		resp := ts.api.Post(Prefix+"/auth/register", map[string]any{"email": "a@example.com"})
		requireError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")
	})
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "someone")

	resp := ts.api.Post(Prefix+"/auth/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "correct horse battery",
	})
	errBody := requireError(t, resp, http.StatusUnauthorized, "INVALID_CREDENTIALS")
	assert.Equal(t, "invalid email or password", errBody.Message)
}

func TestAuthentication(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name   string
		header []any
	}{
		{"missing header", nil},
		{"wrong scheme", []any{"Authorization: Basic abc"}},
		{"garbage token", []any{"Authorization: Bearer v4.public.garbage"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get(Prefix+"/users/me", tt.header...)
			requireError(t, resp, http.StatusUnauthorized, "UNAUTHENTICATED")
		})
	}
}

func TestDeleteAccount(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createUser(t, "leaver")
	assocID := ts.addBook(t, token, "vol-1")

	resp := ts.api.Post(Prefix+"/onelines", bearerHeader(token), map[string]any{
		"association_id": assocID,
		"content":        "goodbye",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Delete(Prefix+"/users/me", bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// The token still verifies cryptographically but its user is gone.
	resp = ts.api.Get(Prefix+"/users/me", bearerHeader(token))
	requireError(t, resp, http.StatusUnauthorized, "UNAUTHENTICATED")
}

func TestBadges(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createUser(t, "collector")

	resp := ts.api.Get(Prefix+"/badges", bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code)
	catalog := decodeEnvelope[BadgeCatalogResponse](t, resp)
	require.NotEmpty(t, catalog.Data.Badges)

	assocID := ts.addBook(t, token, "vol-1")
	resp = ts.api.Post(Prefix+"/onelines", bearerHeader(token), map[string]any{
		"association_id": assocID,
		"content":        "first words",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	// The one-line badge was unlocked by the write itself, so a manual
	// evaluation finds nothing new.
	resp = ts.api.Post(Prefix+"/users/me/badges/evaluate", bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	evaluated := decodeEnvelope[UnlocksResponse](t, resp)
	assert.Empty(t, evaluated.Data.Unlocked)

	resp = ts.api.Get(Prefix+"/users/me", bearerHeader(token))
	profile := decodeEnvelope[domain.Profile](t, resp)
	ids := make([]string, len(profile.Data.Unlocks))
	for i, u := range profile.Data.Unlocks {
		ids[i] = u.BadgeID
	}
	assert.Contains(t, ids, "oneline-1")
	assert.EqualValues(t, 20, profile.Data.Ledger.CumulativeExperience)
}
