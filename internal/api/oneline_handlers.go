package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

func (s *Server) registerOneLineRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createOneLine",
		Method:        http.MethodPost,
		Path:          Prefix + "/onelines",
		Summary:       "Create one-line note",
		Description:   "Writes the one-line note of a book in your collection",
		Tags:          []string{"One-line Notes"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateOneLine)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateOneLine",
		Method:      http.MethodPatch,
		Path:        Prefix + "/onelines/{id}",
		Summary:     "Update one-line note",
		Description: "Changes a one-line note you wrote",
		Tags:        []string{"One-line Notes"},
		Security:    bearer,
	}, s.handleUpdateOneLine)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteOneLine",
		Method:      http.MethodDelete,
		Path:        Prefix + "/onelines/{id}",
		Summary:     "Delete one-line note",
		Description: "Deletes a one-line note you wrote",
		Tags:        []string{"One-line Notes"},
		Security:    bearer,
	}, s.handleDeleteOneLine)
}

// CreateOneLineRequest is the request body for a one-line note.
type CreateOneLineRequest struct {
	AssociationID string `json:"association_id" doc:"Collection item the note is about"`
	Content       string `json:"content" doc:"Note text, up to 500 characters"`
	Visibility    string `json:"visibility,omitempty" doc:"PUBLIC, FRIEND_ONLY or PRIVATE; defaults to PUBLIC"`
}

// CreateOneLineInput wraps the create one-line request for Huma.
type CreateOneLineInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateOneLineRequest
}

// UpdateOneLineRequest is the request body for changing a one-line note.
type UpdateOneLineRequest struct {
	Content    *string `json:"content,omitempty" doc:"Note text"`
	Visibility *string `json:"visibility,omitempty" doc:"Visibility"`
}

// UpdateOneLineInput wraps the update one-line request for Huma.
type UpdateOneLineInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Note ID"`
	Body          UpdateOneLineRequest
}

// NoteIDInput identifies a note.
type NoteIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Note ID"`
}

// CardOutput wraps one note card for Huma.
type CardOutput struct {
	Body domain.Card
}

func (s *Server) handleCreateOneLine(ctx context.Context, input *CreateOneLineInput) (*CardOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	card, err := s.services.OneLine.Create(ctx, userID, service.CreateOneLineRequest{
		AssociationID: input.Body.AssociationID,
		Content:       input.Body.Content,
		Visibility:    domain.Visibility(input.Body.Visibility),
	})
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: card}, nil
}

func (s *Server) handleUpdateOneLine(ctx context.Context, input *UpdateOneLineInput) (*CardOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	card, err := s.services.OneLine.Update(ctx, userID, input.ID, service.UpdateOneLineRequest{
		Content:    input.Body.Content,
		Visibility: visibilityPtr(input.Body.Visibility),
	})
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: card}, nil
}

func (s *Server) handleDeleteOneLine(ctx context.Context, input *NoteIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.OneLine.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return message("One-line note deleted"), nil
}

func visibilityPtr(v *string) *domain.Visibility {
	if v == nil {
		return nil
	}
	vis := domain.Visibility(*v)
	return &vis
}
