package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

func (s *Server) registerCustomBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createCustomBook",
		Method:        http.MethodPost,
		Path:          Prefix + "/books/custom",
		Summary:       "Create custom book",
		Description:   "Creates a book that is not in the remote catalog and adds it to your collection",
		Tags:          []string{"Custom Books"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCustomBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchCustomBooks",
		Method:      http.MethodGet,
		Path:        Prefix + "/books/custom/search",
		Summary:     "Search custom books",
		Description: "Searches the custom books you created by title or author",
		Tags:        []string{"Custom Books"},
		Security:    bearer,
	}, s.handleSearchCustomBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCustomBook",
		Method:      http.MethodGet,
		Path:        Prefix + "/books/custom/{id}",
		Summary:     "Get custom book",
		Description: "Returns a custom book in your collection",
		Tags:        []string{"Custom Books"},
		Security:    bearer,
	}, s.handleGetCustomBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCustomBook",
		Method:      http.MethodPatch,
		Path:        Prefix + "/books/custom/{id}",
		Summary:     "Update custom book",
		Description: "Changes a custom book you created",
		Tags:        []string{"Custom Books"},
		Security:    bearer,
	}, s.handleUpdateCustomBook)
}

// CreateCustomBookRequest is the request body for creating a custom book.
type CreateCustomBookRequest struct {
	Title     string `json:"title" doc:"Title"`
	Author    string `json:"author,omitempty" doc:"Author"`
	PageCount int    `json:"page_count,omitempty" doc:"Page count"`
	Publisher string `json:"publisher,omitempty" doc:"Publisher"`
	CoverURL  string `json:"cover_url,omitempty" doc:"Cover image URL"`
	Status    string `json:"status,omitempty" doc:"Initial read status; defaults to NOT_STARTED"`
}

// CreateCustomBookInput wraps the create custom book request for Huma.
type CreateCustomBookInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateCustomBookRequest
}

// SearchCustomBooksInput contains parameters for a custom book search.
type SearchCustomBooksInput struct {
	Authorization string `header:"Authorization"`
	Keyword       string `query:"keyword" doc:"Matches title or author"`
	Limit         int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset        int    `query:"offset" default:"0" minimum:"0" doc:"Items to skip"`
}

// CustomBooksResponse lists custom entries.
type CustomBooksResponse struct {
	Books []*domain.CatalogEntry `json:"books" doc:"Matching custom books"`
}

// CustomBooksOutput wraps a custom book search for Huma.
type CustomBooksOutput struct {
	Body CustomBooksResponse
}

// CustomBookIDInput identifies a custom book.
type CustomBookIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Catalog entry ID"`
}

// UpdateCustomBookRequest is the request body for changing a custom book.
type UpdateCustomBookRequest struct {
	Title     *string `json:"title,omitempty" doc:"Title"`
	Author    *string `json:"author,omitempty" doc:"Author"`
	PageCount *int    `json:"page_count,omitempty" doc:"Page count"`
	Publisher *string `json:"publisher,omitempty" doc:"Publisher"`
	CoverURL  *string `json:"cover_url,omitempty" doc:"Cover image URL"`
}

// UpdateCustomBookInput wraps the update custom book request for Huma.
type UpdateCustomBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Catalog entry ID"`
	Body          UpdateCustomBookRequest
}

// CatalogEntryOutput wraps a catalog entry for Huma.
type CatalogEntryOutput struct {
	Body *domain.CatalogEntry
}

func (s *Server) handleCreateCustomBook(ctx context.Context, input *CreateCustomBookInput) (*CollectionItemOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	item, err := s.services.Library.CreateCustomBook(ctx, userID, service.CustomBookRequest{
		Title:     input.Body.Title,
		Author:    input.Body.Author,
		PageCount: input.Body.PageCount,
		Publisher: input.Body.Publisher,
		CoverURL:  input.Body.CoverURL,
		Status:    domain.ReadStatus(input.Body.Status),
	})
	if err != nil {
		return nil, err
	}
	return &CollectionItemOutput{Body: item}, nil
}

func (s *Server) handleSearchCustomBooks(ctx context.Context, input *SearchCustomBooksInput) (*CustomBooksOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Library.SearchCustomBooks(ctx, userID, input.Keyword, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []*domain.CatalogEntry{}
	}
	return &CustomBooksOutput{Body: CustomBooksResponse{Books: books}}, nil
}

func (s *Server) handleGetCustomBook(ctx context.Context, input *CustomBookIDInput) (*CollectionItemOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	item, err := s.services.Library.GetCustomBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &CollectionItemOutput{Body: item}, nil
}

func (s *Server) handleUpdateCustomBook(ctx context.Context, input *UpdateCustomBookInput) (*CatalogEntryOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Library.UpdateCustomBook(ctx, userID, input.ID, service.UpdateCustomBookRequest{
		Title:     input.Body.Title,
		Author:    input.Body.Author,
		PageCount: input.Body.PageCount,
		Publisher: input.Body.Publisher,
		CoverURL:  input.Body.CoverURL,
	})
	if err != nil {
		return nil, err
	}
	return &CatalogEntryOutput{Body: entry}, nil
}
