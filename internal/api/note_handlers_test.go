package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
)

// testCard decodes the fields shared by every card type.
type testCard struct {
	Type       string `json:"type"`
	NoteID     string `json:"note_id"`
	AuthorID   string `json:"author_id"`
	Content    string `json:"content"`
	Visibility string `json:"visibility"`
	Title      string `json:"title"`
	PageNumber *int   `json:"page_number"`
}

type testArchive struct {
	Excerpt *testCard `json:"excerpt"`
	Review  *testCard `json:"review"`
}

type testSearch struct {
	Total uint64     `json:"total"`
	Cards []testCard `json:"cards"`
}

func TestOneLineLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.createUser(t, "writer")
	other, _ := ts.createUser(t, "reader")
	assocID := ts.addBook(t, token, "vol-1")

	resp := ts.api.Post(Prefix+"/onelines", bearerHeader(token), map[string]any{
		"association_id": assocID,
		"content":        "  a quiet book about loud people  ",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	card := decodeEnvelope[testCard](t, resp).Data
	assert.Equal(t, string(domain.CardOneLine), card.Type)
	assert.Equal(t, userID, card.AuthorID)
	assert.Equal(t, "a quiet book about loud people", card.Content)
	assert.Equal(t, string(domain.VisibilityPublic), card.Visibility)

	resp = ts.api.Post(Prefix+"/onelines", bearerHeader(token), map[string]any{
		"association_id": assocID,
		"content":        "second thoughts",
	})
	requireError(t, resp, http.StatusConflict, "CONFLICT")

	resp = ts.api.Patch(Prefix+"/onelines/"+card.NoteID, bearerHeader(other), map[string]any{"content": "hijacked"})
	requireError(t, resp, http.StatusForbidden, "UNAUTHORIZED")

	resp = ts.api.Patch(Prefix+"/onelines/"+card.NoteID, bearerHeader(token), map[string]any{"content": "   "})
	requireError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")

	resp = ts.api.Patch(Prefix+"/onelines/"+card.NoteID, bearerHeader(token), map[string]any{
		"content":    "a loud book about quiet people",
		"visibility": "PRIVATE",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decodeEnvelope[testCard](t, resp).Data
	assert.Equal(t, "a loud book about quiet people", updated.Content)
	assert.Equal(t, string(domain.VisibilityPrivate), updated.Visibility)

	resp = ts.api.Delete(Prefix+"/onelines/"+card.NoteID, bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Delete(Prefix+"/onelines/"+card.NoteID, bearerHeader(token))
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")

	resp = ts.api.Post(Prefix+"/onelines", bearerHeader(other), map[string]any{
		"association_id": assocID,
		"content":        "not my book",
	})
	requireError(t, resp, http.StatusForbidden, "UNAUTHORIZED")
}

func TestCreateArchive(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createUser(t, "archivist")
	assocID := ts.addBook(t, token, "vol-1")

	resp := ts.api.Post(Prefix+"/archives", bearerHeader(token), map[string]any{
		"association_id": assocID,
		"excerpt":        map[string]any{"content": "It was a bright cold day in April.", "page_number": 3},
		"review":         map[string]any{"title": "Chilling", "content": "Still relevant.", "visibility": "FRIEND_ONLY"},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	res := decodeEnvelope[testArchive](t, resp).Data
	require.NotNil(t, res.Excerpt)
	require.NotNil(t, res.Review)
	assert.Equal(t, string(domain.CardExcerpt), res.Excerpt.Type)
	require.NotNil(t, res.Excerpt.PageNumber)
	assert.Equal(t, 3, *res.Excerpt.PageNumber)
	assert.Equal(t, string(domain.CardReview), res.Review.Type)
	assert.Equal(t, "Chilling", res.Review.Title)
	assert.Equal(t, string(domain.VisibilityFriendOnly), res.Review.Visibility)

	resp = ts.api.Get(Prefix+"/users/me", bearerHeader(token))
	profile := decodeEnvelope[domain.Profile](t, resp).Data
	assert.EqualValues(t, 40, profile.Ledger.CumulativeExperience)

	resp = ts.api.Post(Prefix+"/archives", bearerHeader(token), map[string]any{"association_id": assocID})
	requireError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")

	resp = ts.api.Post(Prefix+"/archives", bearerHeader(token), map[string]any{
		"association_id": assocID,
		"review":         map[string]any{"content": "Colorful", "color": "pink"},
	})
	requireError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")
}

func TestArchiveVisibility(t *testing.T) {
	ts := setupTestServer(t)
	owner, _ := ts.createUser(t, "keeper")
	other, _ := ts.createUser(t, "visitor")
	assocID := ts.addBook(t, owner, "vol-1")

	resp := ts.api.Post(Prefix+"/archives", bearerHeader(owner), map[string]any{
		"association_id": assocID,
		"excerpt":        map[string]any{"content": "secret line", "visibility": "PRIVATE"},
		"review":         map[string]any{"content": "open review"},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	res := decodeEnvelope[testArchive](t, resp).Data

	resp = ts.api.Get(Prefix+"/archives/"+res.Excerpt.NoteID, bearerHeader(owner))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "secret line", decodeEnvelope[testCard](t, resp).Data.Content)

	resp = ts.api.Get(Prefix+"/archives/"+res.Excerpt.NoteID, bearerHeader(other))
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")

	resp = ts.api.Get(Prefix+"/archives/"+res.Review.NoteID, bearerHeader(other))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Delete(Prefix+"/archives/"+res.Review.NoteID, bearerHeader(other))
	requireError(t, resp, http.StatusForbidden, "UNAUTHORIZED")

	resp = ts.api.Patch(Prefix+"/archives/"+res.Review.NoteID, bearerHeader(owner), map[string]any{"title": "Renamed"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Renamed", decodeEnvelope[testCard](t, resp).Data.Title)

	resp = ts.api.Delete(Prefix+"/archives/"+res.Review.NoteID, bearerHeader(owner))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get(Prefix+"/archives/"+res.Review.NoteID, bearerHeader(owner))
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestArchiveOnelineIsNotAnArchive(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createUser(t, "oneliner")
	assocID := ts.addBook(t, token, "vol-1")

	resp := ts.api.Post(Prefix+"/onelines", bearerHeader(token), map[string]any{
		"association_id": assocID,
		"content":        "short and sweet",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	noteID := decodeEnvelope[testCard](t, resp).Data.NoteID

	resp = ts.api.Get(Prefix+"/archives/"+noteID, bearerHeader(token))
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")

	resp = ts.api.Delete(Prefix+"/archives/"+noteID, bearerHeader(token))
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestSearchArchives(t *testing.T) {
	ts := setupTestServer(t)
	alice, _ := ts.createUser(t, "alice")
	bob, _ := ts.createUser(t, "bob")
	aliceBook := ts.addBook(t, alice, "vol-1")
	bobBook := ts.addBook(t, bob, "vol-2")

	resp := ts.api.Post(Prefix+"/archives", bearerHeader(alice), map[string]any{
		"association_id": aliceBook,
		"excerpt":        map[string]any{"content": "the lighthouse keeper slept"},
		"review":         map[string]any{"content": "a lighthouse diary", "visibility": "PRIVATE"},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Post(Prefix+"/archives", bearerHeader(bob), map[string]any{
		"association_id": bobBook,
		"excerpt":        map[string]any{"content": "no lighthouse here", "visibility": "PRIVATE"},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Get(Prefix+"/archives/search?keyword=lighthouse", bearerHeader(alice))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	mine := decodeEnvelope[testSearch](t, resp).Data
	assert.Len(t, mine.Cards, 2)

	resp = ts.api.Get(Prefix+"/archives/search?keyword=lighthouse&orderBy=latest", bearerHeader(bob))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	theirs := decodeEnvelope[testSearch](t, resp).Data
	require.Len(t, theirs.Cards, 2)
	contents := []string{theirs.Cards[0].Content, theirs.Cards[1].Content}
	assert.ElementsMatch(t, []string{"the lighthouse keeper slept", "no lighthouse here"}, contents)
}

func TestCardsCarryTypeDiscriminator(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createUser(t, "typed")
	assocID := ts.addBook(t, token, "vol-1")

	resp := ts.api.Post(Prefix+"/onelines", bearerHeader(token), map[string]any{
		"association_id": assocID,
		"content":        "typed card",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decodeEnvelope[map[string]json.RawMessage](t, resp)
	assert.JSONEq(t, `"ONELINE"`, string(env.Data["type"]))
	assert.JSONEq(t, `null`, string(env.Data["rating"]))
}
