package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seohyun-lee/bookduck-backend/internal/catalog/googlebooks"
	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

func TestAddBook(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.createUser(t, "adder")

	resp := ts.api.Post(Prefix+"/books", bearerHeader(token), map[string]any{
		"provider_id": "vol-1",
		"status":      "READING",
		"rating":      4.5,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	item := decodeEnvelope[domain.CollectionItem](t, resp).Data
	assert.Equal(t, userID, item.Association.UserID)
	assert.Equal(t, domain.StatusReading, item.Association.Status)
	assert.InDelta(t, 4.5, item.Association.Rating, 0)
	assert.Equal(t, "Title of vol-1", item.Entry.Title)

	resp = ts.api.Post(Prefix+"/books", bearerHeader(token), map[string]any{"provider_id": "vol-1"})
	requireError(t, resp, http.StatusConflict, "CONFLICT")

	resp = ts.api.Post(Prefix+"/books", bearerHeader(token), map[string]any{"provider_id": "missing"})
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")

	resp = ts.api.Post(Prefix+"/books", bearerHeader(token), map[string]any{"provider_id": "vol-2", "rating": 4.2})
	requireError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")
}

func TestChangeStatus_AwardsOnce(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createUser(t, "finisher")
	assocID := ts.addBook(t, token, "vol-1")

	for range 2 {
		resp := ts.api.Patch(Prefix+"/books/"+assocID+"/status", bearerHeader(token), map[string]any{"status": "FINISHED"})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		a := decodeEnvelope[domain.Association](t, resp).Data
		assert.Equal(t, domain.StatusFinished, a.Status)
		assert.NotNil(t, a.FinishedAt)
	}

	resp := ts.api.Get(Prefix+"/users/me", bearerHeader(token))
	profile := decodeEnvelope[domain.Profile](t, resp).Data
	assert.EqualValues(t, 50, profile.Ledger.CumulativeExperience)

	resp = ts.api.Patch(Prefix+"/books/"+assocID+"/status", bearerHeader(token), map[string]any{"status": "DONE"})
	requireError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")
}

func TestBookOwnership(t *testing.T) {
	ts := setupTestServer(t)
	owner, _ := ts.createUser(t, "owner")
	other, _ := ts.createUser(t, "other")
	assocID := ts.addBook(t, owner, "vol-1")

	resp := ts.api.Patch(Prefix+"/books/"+assocID+"/rating", bearerHeader(other), map[string]any{"rating": 3})
	requireError(t, resp, http.StatusForbidden, "UNAUTHORIZED")

	resp = ts.api.Delete(Prefix+"/books/"+assocID, bearerHeader(other))
	requireError(t, resp, http.StatusForbidden, "UNAUTHORIZED")

	resp = ts.api.Delete(Prefix+"/books/ub-missing", bearerHeader(owner))
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestRating(t *testing.T) {
	ts := setupTestServer(t)
	alice, _ := ts.createUser(t, "alice")
	bob, _ := ts.createUser(t, "bob")
	aliceBook := ts.addBook(t, alice, "vol-1")
	bobBook := ts.addBook(t, bob, "vol-1")

	resp := ts.api.Patch(Prefix+"/books/"+aliceBook+"/rating", bearerHeader(alice), map[string]any{"rating": 4})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	entryID := decodeEnvelope[domain.Association](t, resp).Data.EntryID

	resp = ts.api.Patch(Prefix+"/books/"+bobBook+"/rating", bearerHeader(bob), map[string]any{"rating": 5})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get(Prefix+"/catalog/entries/"+entryID+"/rating", bearerHeader(alice))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	avg := decodeEnvelope[EntryRatingResponse](t, resp).Data.Average
	got, ok := avg.Get()
	require.True(t, ok)
	assert.InDelta(t, 4.5, got, 1e-9)

	resp = ts.api.Delete(Prefix+"/books/"+bobBook+"/rating", bearerHeader(bob))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp = ts.api.Delete(Prefix+"/books/"+aliceBook+"/rating", bearerHeader(alice))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get(Prefix+"/catalog/entries/"+entryID+"/rating", bearerHeader(alice))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"average":null`)

	resp = ts.api.Get(Prefix+"/catalog/entries/book-missing/rating", bearerHeader(alice))
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestListAndRemoveBooks(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createUser(t, "lister")
	first := ts.addBook(t, token, "vol-a")
	second := ts.addBook(t, token, "vol-b")

	resp := ts.api.Patch(Prefix+"/books/"+second+"/status", bearerHeader(token), map[string]any{"status": "READING"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get(Prefix+"/books?status=READING", bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	list := decodeEnvelope[CollectionResponse](t, resp).Data
	require.Len(t, list.Books, 1)
	assert.Equal(t, second, list.Books[0].Association.ID)

	resp = ts.api.Get(Prefix+"/books?sort=title", bearerHeader(token))
	list = decodeEnvelope[CollectionResponse](t, resp).Data
	require.Len(t, list.Books, 2)
	assert.Equal(t, first, list.Books[0].Association.ID)

	resp = ts.api.Get(Prefix+"/books?status=SOMEDAY", bearerHeader(token))
	requireError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")

	resp = ts.api.Delete(Prefix+"/books/"+first, bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get(Prefix+"/books", bearerHeader(token))
	list = decodeEnvelope[CollectionResponse](t, resp).Data
	require.Len(t, list.Books, 1)
}

func TestCustomBooks(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.createUser(t, "maker")
	other, _ := ts.createUser(t, "stranger")

	resp := ts.api.Post(Prefix+"/books/custom", bearerHeader(token), map[string]any{
		"title":  "Zine Vol. 1",
		"author": "Kim",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	item := decodeEnvelope[domain.CollectionItem](t, resp).Data
	assert.Equal(t, userID, item.Entry.CreatedUserID)
	assert.Empty(t, item.Entry.ProviderID)
	entryID := item.Entry.ID

	resp = ts.api.Get(Prefix+"/books/custom/"+entryID, bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get(Prefix+"/books/custom/"+entryID, bearerHeader(other))
	requireError(t, resp, http.StatusForbidden, "UNAUTHORIZED")

	resp = ts.api.Patch(Prefix+"/books/custom/"+entryID, bearerHeader(token), map[string]any{"title": "Zine Vol. 2"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Zine Vol. 2", decodeEnvelope[domain.CatalogEntry](t, resp).Data.Title)

	resp = ts.api.Patch(Prefix+"/books/custom/"+entryID, bearerHeader(other), map[string]any{"title": "Mine now"})
	requireError(t, resp, http.StatusForbidden, "UNAUTHORIZED")

	resp = ts.api.Get(Prefix+"/books/custom/search?keyword=zine", bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	found := decodeEnvelope[CustomBooksResponse](t, resp).Data
	require.Len(t, found.Books, 1)
	assert.Equal(t, entryID, found.Books[0].ID)

	resp = ts.api.Get(Prefix+"/books/custom/search?keyword=zine", bearerHeader(other))
	assert.Empty(t, decodeEnvelope[CustomBooksResponse](t, resp).Data.Books)

	resp = ts.api.Get(Prefix+"/books/custom/search", bearerHeader(token))
	requireError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")
}

func TestCatalogSearch(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createUser(t, "searcher")
	assocID := ts.addBook(t, token, "vol-1")

	resp := ts.api.Patch(Prefix+"/books/"+assocID+"/rating", bearerHeader(token), map[string]any{"rating": 3.5})
	require.Equal(t, http.StatusOK, resp.Code)

	ts.catalog.page = &googlebooks.SearchPage{
		TotalItems: 2,
		Candidates: []domain.Candidate{
			{ProviderID: "vol-1", Title: "Title of vol-1"},
			{ProviderID: "vol-9", Title: "Never stored"},
		},
	}

	resp = ts.api.Get(Prefix+"/catalog/search?keyword=title&page=0&size=10", bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	res := decodeEnvelope[service.RemoteSearchResult](t, resp).Data
	require.Len(t, res.Books, 2)
	assert.Equal(t, 2, res.TotalItems)

	overlay, ok := res.Books[0].Overlay.Get()
	require.True(t, ok)
	assert.Equal(t, assocID, overlay.AssociationID)
	rating, _ := overlay.Rating.Get()
	assert.InDelta(t, 3.5, rating, 0)

	assert.Empty(t, res.Books[1].EntryID)
	assert.False(t, res.Books[1].Overlay.Present())

	resp = ts.api.Get(Prefix+"/catalog/search?keyword=%20", bearerHeader(token))
	requireError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")

	resp = ts.api.Get(Prefix+"/catalog/search?keyword=x&page=-1", bearerHeader(token))
	requireError(t, resp, http.StatusBadRequest, "INVALID_ARGUMENT")
}

func TestGetVolume(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createUser(t, "viewer")

	resp := ts.api.Get(Prefix+"/catalog/volumes/vol-7", bearerHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	view := decodeEnvelope[service.VolumeView](t, resp).Data
	assert.Equal(t, "vol-7", view.Detail.ProviderID)
	assert.Empty(t, view.EntryID)
	assert.False(t, view.Overlay.Present())

	resp = ts.api.Get(Prefix+"/catalog/volumes/missing", bearerHeader(token))
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")
}
