package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        Prefix + "/catalog/search",
		Summary:     "Search remote catalog",
		Description: "Searches the remote book catalog and marks the books already in your collection",
		Tags:        []string{"Catalog"},
		Security:    bearer,
	}, s.handleSearchCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "getVolume",
		Method:      http.MethodGet,
		Path:        Prefix + "/catalog/volumes/{providerId}",
		Summary:     "Get volume",
		Description: "Returns a remote volume's details with your rating and status when you have it",
		Tags:        []string{"Catalog"},
		Security:    bearer,
	}, s.handleGetVolume)

	huma.Register(s.api, huma.Operation{
		OperationID: "getVolumeAdditional",
		Method:      http.MethodGet,
		Path:        Prefix + "/catalog/volumes/{providerId}/additional",
		Summary:     "Get other readers' one-line notes",
		Description: "Returns up to three shared one-line notes by other readers, highest rated first",
		Tags:        []string{"Catalog"},
		Security:    bearer,
	}, s.handleGetVolumeAdditional)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEntryRating",
		Method:      http.MethodGet,
		Path:        Prefix + "/catalog/entries/{id}/rating",
		Summary:     "Get average rating",
		Description: "Returns the mean rating of a stored book across all readers",
		Tags:        []string{"Catalog"},
		Security:    bearer,
	}, s.handleGetEntryRating)
}

// SearchCatalogInput contains parameters for a remote catalog search.
type SearchCatalogInput struct {
	Authorization string `header:"Authorization"`
	Keyword       string `query:"keyword" doc:"Search keyword"`
	Page          int    `query:"page" default:"0" minimum:"0" doc:"Zero-based page number"`
	Size          int    `query:"size" default:"10" minimum:"1" maximum:"40" doc:"Results per page"`
}

// SearchCatalogOutput wraps a reconciled search page for Huma.
type SearchCatalogOutput struct {
	Body *service.RemoteSearchResult
}

// VolumeInput identifies a remote volume.
type VolumeInput struct {
	Authorization string `header:"Authorization"`
	ProviderID    string `path:"providerId" doc:"Remote volume ID"`
}

// VolumeOutput wraps a volume view for Huma.
type VolumeOutput struct {
	Body *service.VolumeView
}

// CardsResponse lists note cards.
type CardsResponse struct {
	Cards []domain.Card `json:"cards" doc:"Note cards"`
}

// CardsOutput wraps note cards for Huma.
type CardsOutput struct {
	Body CardsResponse
}

// EntryRatingInput identifies a stored catalog entry.
type EntryRatingInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Catalog entry ID"`
}

// EntryRatingResponse is an entry's average rating. Average is null when
// nobody has rated the book.
type EntryRatingResponse struct {
	EntryID string                   `json:"entry_id" doc:"Catalog entry ID"`
	Average domain.Optional[float64] `json:"average" doc:"Mean rating across readers"`
}

// EntryRatingOutput wraps an entry rating for Huma.
type EntryRatingOutput struct {
	Body EntryRatingResponse
}

func (s *Server) handleSearchCatalog(ctx context.Context, input *SearchCatalogInput) (*SearchCatalogOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	res, err := s.services.Catalog.SearchRemote(ctx, userID, input.Keyword, input.Page, input.Size)
	if err != nil {
		return nil, err
	}
	return &SearchCatalogOutput{Body: res}, nil
}

func (s *Server) handleGetVolume(ctx context.Context, input *VolumeInput) (*VolumeOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Catalog.Volume(ctx, userID, input.ProviderID)
	if err != nil {
		return nil, err
	}
	return &VolumeOutput{Body: view}, nil
}

func (s *Server) handleGetVolumeAdditional(ctx context.Context, input *VolumeInput) (*CardsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	cards, err := s.services.Catalog.Additional(ctx, userID, input.ProviderID)
	if err != nil {
		return nil, err
	}
	return &CardsOutput{Body: CardsResponse{Cards: cards}}, nil
}

func (s *Server) handleGetEntryRating(ctx context.Context, input *EntryRatingInput) (*EntryRatingOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	avg, err := s.services.Catalog.AverageRating(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &EntryRatingOutput{Body: EntryRatingResponse{EntryID: input.ID, Average: avg}}, nil
}
