package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        Prefix + "/books",
		Summary:     "List collection",
		Description: "Returns the books in your collection",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addBook",
		Method:        http.MethodPost,
		Path:          Prefix + "/books",
		Summary:       "Add book",
		Description:   "Adds a remote volume to your collection, storing it locally on first use",
		Tags:          []string{"Books"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleAddBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "changeBookStatus",
		Method:      http.MethodPatch,
		Path:        Prefix + "/books/{id}/status",
		Summary:     "Change read status",
		Description: "Sets the read status. Finishing a book for the first time earns experience.",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleChangeBookStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "rateBook",
		Method:      http.MethodPatch,
		Path:        Prefix + "/books/{id}/rating",
		Summary:     "Rate book",
		Description: "Sets your rating, 0.5 to 5.0 in half steps",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleRateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBookRating",
		Method:      http.MethodDelete,
		Path:        Prefix + "/books/{id}/rating",
		Summary:     "Delete rating",
		Description: "Clears your rating",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleDeleteBookRating)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBook",
		Method:      http.MethodDelete,
		Path:        Prefix + "/books/{id}",
		Summary:     "Remove book",
		Description: "Removes a book and every note written on it from your collection",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleRemoveBook)
}

// ListBooksInput contains parameters for listing the collection.
type ListBooksInput struct {
	Authorization string   `header:"Authorization"`
	Sort          string   `query:"sort" enum:"latest,title,rating" default:"latest" doc:"Ordering"`
	Status        []string `query:"status" doc:"Read statuses to include"`
	Limit         int      `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Page size"`
	Offset        int      `query:"offset" default:"0" minimum:"0" doc:"Items to skip"`
}

// CollectionResponse lists collection items.
type CollectionResponse struct {
	Books []*domain.CollectionItem `json:"books" doc:"Books in the collection"`
}

// CollectionOutput wraps a collection listing for Huma.
type CollectionOutput struct {
	Body CollectionResponse
}

// AddBookRequest is the request body for adding a remote volume.
type AddBookRequest struct {
	ProviderID string  `json:"provider_id" doc:"Remote volume ID"`
	Status     string  `json:"status,omitempty" doc:"NOT_STARTED, READING, FINISHED or STOPPED; defaults to NOT_STARTED"`
	Rating     float64 `json:"rating,omitempty" doc:"Initial rating"`
}

// AddBookInput wraps the add book request for Huma.
type AddBookInput struct {
	Authorization string `header:"Authorization"`
	Body          AddBookRequest
}

// CollectionItemOutput wraps one collection item for Huma.
type CollectionItemOutput struct {
	Body *domain.CollectionItem
}

// BookIDInput identifies a book in the caller's collection.
type BookIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Collection item ID"`
}

// ChangeStatusRequest is the request body for a status change.
type ChangeStatusRequest struct {
	Status string `json:"status" doc:"New read status"`
}

// ChangeStatusInput wraps the status change request for Huma.
type ChangeStatusInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Collection item ID"`
	Body          ChangeStatusRequest
}

// RateBookRequest is the request body for rating a book.
type RateBookRequest struct {
	Rating float64 `json:"rating" doc:"Rating, 0.5 to 5.0 in half steps"`
}

// RateBookInput wraps the rating request for Huma.
type RateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Collection item ID"`
	Body          RateBookRequest
}

// AssociationOutput wraps a collection item's state for Huma.
type AssociationOutput struct {
	Body *domain.Association
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*CollectionOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.ReadStatus, len(input.Status))
	for i, st := range input.Status {
		statuses[i] = domain.ReadStatus(st)
	}

	items, err := s.services.Library.ListCollection(ctx, userID, service.ListCollectionRequest{
		Sort:     input.Sort,
		Statuses: statuses,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.CollectionItem{}
	}
	return &CollectionOutput{Body: CollectionResponse{Books: items}}, nil
}

func (s *Server) handleAddBook(ctx context.Context, input *AddBookInput) (*CollectionItemOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	item, err := s.services.Library.AddVolume(ctx, userID, service.AddVolumeRequest{
		ProviderID: input.Body.ProviderID,
		Status:     domain.ReadStatus(input.Body.Status),
		Rating:     input.Body.Rating,
	})
	if err != nil {
		return nil, err
	}
	return &CollectionItemOutput{Body: item}, nil
}

func (s *Server) handleChangeBookStatus(ctx context.Context, input *ChangeStatusInput) (*AssociationOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	a, err := s.services.Library.ChangeStatus(ctx, userID, input.ID, domain.ReadStatus(input.Body.Status))
	if err != nil {
		return nil, err
	}
	return &AssociationOutput{Body: a}, nil
}

func (s *Server) handleRateBook(ctx context.Context, input *RateBookInput) (*AssociationOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	a, err := s.services.Library.SetRating(ctx, userID, input.ID, input.Body.Rating)
	if err != nil {
		return nil, err
	}
	return &AssociationOutput{Body: a}, nil
}

func (s *Server) handleDeleteBookRating(ctx context.Context, input *BookIDInput) (*AssociationOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	a, err := s.services.Library.DeleteRating(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &AssociationOutput{Body: a}, nil
}

func (s *Server) handleRemoveBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Library.Remove(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return message("Book removed"), nil
}
