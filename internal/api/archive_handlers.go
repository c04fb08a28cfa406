package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

func (s *Server) registerArchiveRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createArchive",
		Method:        http.MethodPost,
		Path:          Prefix + "/archives",
		Summary:       "Create archive",
		Description:   "Saves an excerpt, a review or both for a book in your collection",
		Tags:          []string{"Archives"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateArchive)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchArchives",
		Method:      http.MethodGet,
		Path:        Prefix + "/archives/search",
		Summary:     "Search archives",
		Description: "Searches your notes and other readers' shared notes",
		Tags:        []string{"Archives"},
		Security:    bearer,
	}, s.handleSearchArchives)

	huma.Register(s.api, huma.Operation{
		OperationID: "getArchive",
		Method:      http.MethodGet,
		Path:        Prefix + "/archives/{id}",
		Summary:     "Get archive",
		Description: "Returns an excerpt or review",
		Tags:        []string{"Archives"},
		Security:    bearer,
	}, s.handleGetArchive)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateArchive",
		Method:      http.MethodPatch,
		Path:        Prefix + "/archives/{id}",
		Summary:     "Update archive",
		Description: "Changes an excerpt or review you wrote",
		Tags:        []string{"Archives"},
		Security:    bearer,
	}, s.handleUpdateArchive)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteArchive",
		Method:      http.MethodDelete,
		Path:        Prefix + "/archives/{id}",
		Summary:     "Delete archive",
		Description: "Deletes an excerpt or review you wrote",
		Tags:        []string{"Archives"},
		Security:    bearer,
	}, s.handleDeleteArchive)
}

// ExcerptBody is the excerpt part of a create archive request.
type ExcerptBody struct {
	Content    string `json:"content" doc:"Quoted text"`
	PageNumber *int   `json:"page_number,omitempty" doc:"Page the excerpt is from"`
	Visibility string `json:"visibility,omitempty" doc:"Visibility; defaults to PUBLIC"`
}

// ReviewBody is the review part of a create archive request.
type ReviewBody struct {
	Title      string `json:"title,omitempty" doc:"Review title"`
	Content    string `json:"content" doc:"Review text"`
	Color      string `json:"color,omitempty" doc:"Card color as #RRGGBB; defaults to white"`
	Visibility string `json:"visibility,omitempty" doc:"Visibility; defaults to PUBLIC"`
}

// CreateArchiveRequest is the request body for an archive.
type CreateArchiveRequest struct {
	AssociationID string       `json:"association_id" doc:"Collection item the notes are about"`
	Excerpt       *ExcerptBody `json:"excerpt,omitempty" doc:"Excerpt to save"`
	Review        *ReviewBody  `json:"review,omitempty" doc:"Review to save"`
}

// CreateArchiveInput wraps the create archive request for Huma.
type CreateArchiveInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateArchiveRequest
}

// ArchiveOutput wraps the created notes for Huma.
type ArchiveOutput struct {
	Body *service.ArchiveResult
}

// UpdateArchiveRequest is the request body for changing an excerpt or review.
type UpdateArchiveRequest struct {
	Content    *string `json:"content,omitempty" doc:"Text"`
	Visibility *string `json:"visibility,omitempty" doc:"Visibility"`
	Title      *string `json:"title,omitempty" doc:"Review title"`
	Color      *string `json:"color,omitempty" doc:"Review card color"`
	PageNumber *int    `json:"page_number,omitempty" doc:"Excerpt page"`
}

// UpdateArchiveInput wraps the update archive request for Huma.
type UpdateArchiveInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Note ID"`
	Body          UpdateArchiveRequest
}

// SearchArchivesInput contains parameters for an archive search.
type SearchArchivesInput struct {
	Authorization string `header:"Authorization"`
	Keyword       string `query:"keyword" doc:"Matched literally against note text, titles and book fields"`
	OrderBy       string `query:"orderBy" doc:"accuracy (default), latest or createdTime,desc"`
	Limit         int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset        int    `query:"offset" default:"0" minimum:"0" doc:"Items to skip"`
}

// SearchArchivesOutput wraps a search page for Huma.
type SearchArchivesOutput struct {
	Body *service.SearchResult
}

func (s *Server) handleCreateArchive(ctx context.Context, input *CreateArchiveInput) (*ArchiveOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	req := service.CreateArchiveRequest{AssociationID: input.Body.AssociationID}
	if ex := input.Body.Excerpt; ex != nil {
		req.Excerpt = &service.ExcerptInput{
			Content:    ex.Content,
			PageNumber: ex.PageNumber,
			Visibility: domain.Visibility(ex.Visibility),
		}
	}
	if rv := input.Body.Review; rv != nil {
		req.Review = &service.ReviewInput{
			Title:      rv.Title,
			Content:    rv.Content,
			Color:      rv.Color,
			Visibility: domain.Visibility(rv.Visibility),
		}
	}

	res, err := s.services.Archive.Create(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	return &ArchiveOutput{Body: res}, nil
}

func (s *Server) handleSearchArchives(ctx context.Context, input *SearchArchivesInput) (*SearchArchivesOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	res, err := s.services.Archive.Search(ctx, userID, service.SearchRequest{
		Keyword: input.Keyword,
		OrderBy: input.OrderBy,
		Limit:   input.Limit,
		Offset:  input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &SearchArchivesOutput{Body: res}, nil
}

func (s *Server) handleGetArchive(ctx context.Context, input *NoteIDInput) (*CardOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	card, err := s.services.Archive.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: card}, nil
}

func (s *Server) handleUpdateArchive(ctx context.Context, input *UpdateArchiveInput) (*CardOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	card, err := s.services.Archive.Update(ctx, userID, input.ID, service.UpdateArchiveRequest{
		Content:    input.Body.Content,
		Visibility: visibilityPtr(input.Body.Visibility),
		Title:      input.Body.Title,
		Color:      input.Body.Color,
		PageNumber: input.Body.PageNumber,
	})
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: card}, nil
}

func (s *Server) handleDeleteArchive(ctx context.Context, input *NoteIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Archive.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return message("Archive deleted"), nil
}
