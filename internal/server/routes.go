// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sigil-dev/rolodex/internal/book"
	"github.com/sigil-dev/rolodex/internal/store"
	sigilerr "github.com/sigil-dev/rolodex/pkg/errors"
)

// Book is the contact-book service behind the routes. *book.Book satisfies it.
type Book interface {
	List(ctx context.Context) map[string]store.Contact
	Get(ctx context.Context, name string) (store.Contact, error)
	Add(ctx context.Context, in book.NewContact) error
	Update(ctx context.Context, name string, patch book.ContactPatch) error
	Delete(ctx context.Context, name string) error
	Search(ctx context.Context, query string) []store.NamedContact
	AdvancedSearch(ctx context.Context, f book.Filter) map[string]store.Contact
	Favorites(ctx context.Context) map[string]store.Contact
	AddRelationship(ctx context.Context, a, b string) error
	Graph(ctx context.Context) map[string][]string
	RecordCall(ctx context.Context, name string) (string, error)
	CallLog(ctx context.Context) map[string][]string
	Stats(ctx context.Context) book.Stats
}

var _ Book = (*book.Book)(nil)

func (s *Server) registerRoutes() {
	// Contact endpoints. Static paths are registered before /contacts/{name}
	// so they read naturally; chi prefers static segments either way.
	huma.Register(s.api, huma.Operation{
		OperationID: "list-contacts",
		Method:      http.MethodGet,
		Path:        "/contacts",
		Summary:     "List all contacts",
		Tags:        []string{"contacts"},
	}, s.handleListContacts)

	huma.Register(s.api, huma.Operation{
		OperationID:   "add-contact",
		Method:        http.MethodPost,
		Path:          "/contacts",
		Summary:       "Add or replace a contact",
		Tags:          []string{"contacts"},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "search-contacts",
		Method:      http.MethodGet,
		Path:        "/contacts/search",
		Summary:     "Search contacts by name prefix",
		Tags:        []string{"search"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "advanced-search-contacts",
		Method:      http.MethodGet,
		Path:        "/contacts/advanced-search",
		Summary:     "Filter contacts by phone, email and address substrings",
		Tags:        []string{"search"},
	}, s.handleAdvancedSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-favorites",
		Method:      http.MethodGet,
		Path:        "/contacts/favorites",
		Summary:     "List favorite contacts",
		Tags:        []string{"search"},
	}, s.handleFavorites)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-graph",
		Method:      http.MethodGet,
		Path:        "/contacts/graph",
		Summary:     "Relationship adjacency",
		Description: "Only contacts that currently exist appear; deleting a contact removes its relationships.",
		Tags:        []string{"relationships"},
	}, s.handleGraph)

	huma.Register(s.api, huma.Operation{
		OperationID: "add-relationship",
		Method:      http.MethodPost,
		Path:        "/contacts/relationship/{a}/{b}",
		Summary:     "Relate two contacts",
		Tags:        []string{"relationships"},
	}, s.handleAddRelationship)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-contact",
		Method:      http.MethodGet,
		Path:        "/contacts/{name}",
		Summary:     "Get a contact",
		Tags:        []string{"contacts"},
	}, s.handleGetContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-contact",
		Method:      http.MethodPut,
		Path:        "/contacts/{name}",
		Summary:     "Update a contact",
		Tags:        []string{"contacts"},
	}, s.handleUpdateContact)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-contact",
		Method:      http.MethodDelete,
		Path:        "/contacts/{name}",
		Summary:     "Delete a contact",
		Description: "Removes the contact and every relationship it takes part in. Its call history is kept.",
		Tags:        []string{"contacts"},
	}, s.handleDeleteContact)

	// Call log
	huma.Register(s.api, huma.Operation{
		OperationID: "log-call",
		Method:      http.MethodPost,
		Path:        "/call/{name}",
		Summary:     "Record a call to a contact",
		Tags:        []string{"calls"},
	}, s.handleLogCall)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-call-log",
		Method:      http.MethodGet,
		Path:        "/call-log",
		Summary:     "Call history for every contact",
		Tags:        []string{"calls"},
	}, s.handleCallLog)

	huma.Register(s.api, huma.Operation{
		OperationID: "status",
		Method:      http.MethodGet,
		Path:        "/status",
		Summary:     "Contact book status",
		Tags:        []string{"system"},
	}, s.handleStatus)
}

// --- Request/Response types for huma ---

// Body fields are all optional so that missing values reach the book's own
// validation and come back as 400 with its message.
type contactBody struct {
	Name     string `json:"name,omitempty" doc:"Contact name; case-insensitive identity"`
	Phone    string `json:"phone,omitempty" doc:"Digits only, at least 10"`
	Email    string `json:"email,omitempty" doc:"Optional email address"`
	Address  string `json:"address,omitempty"`
	Group    string `json:"group,omitempty"`
	Favorite bool   `json:"favorite,omitempty"`
}

type addContactInput struct {
	Body contactBody
}

type patchBody struct {
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
	Group    string `json:"group,omitempty"`
	Favorite *bool  `json:"favorite,omitempty" doc:"Applied whenever present"`
}

type updateContactInput struct {
	Name string `path:"name"`
	Body patchBody
}

type nameInput struct {
	Name string `path:"name"`
}

type searchInput struct {
	Query string `query:"query" doc:"Case-insensitive name prefix"`
}

type advancedSearchInput struct {
	Phone   string `query:"phone" doc:"Phone substring, case-sensitive"`
	Email   string `query:"email" doc:"Email substring, case-insensitive"`
	Address string `query:"address" doc:"Address substring, case-insensitive"`
}

type relationshipInput struct {
	A string `path:"a"`
	B string `path:"b"`
}

type messageBody struct {
	Message string `json:"message"`
}

type messageOutput struct {
	Body messageBody
}

type contactsOutput struct {
	Body map[string]store.Contact
}

type contactOutput struct {
	Body store.Contact
}

type listsOutput struct {
	Body map[string][]string
}

type callOutput struct {
	Body struct {
		Message   string `json:"message"`
		Timestamp string `json:"timestamp" example:"2026-01-02 15:04:05"`
	}
}

type statusOutput struct {
	Body struct {
		Status string `json:"status" example:"ok"`
		book.Stats
	}
}

func message(msg string) *messageOutput {
	return &messageOutput{Body: messageBody{Message: msg}}
}

// --- Handlers ---

func (s *Server) handleListContacts(ctx context.Context, _ *struct{}) (*contactsOutput, error) {
	return &contactsOutput{Body: s.book.List(ctx)}, nil
}

func (s *Server) handleGetContact(ctx context.Context, input *nameInput) (*contactOutput, error) {
	c, err := s.book.Get(ctx, input.Name)
	if err != nil {
		return nil, s.toHTTPError(err, "getting contact")
	}
	return &contactOutput{Body: c}, nil
}

func (s *Server) handleAddContact(ctx context.Context, input *addContactInput) (*messageOutput, error) {
	in := input.Body
	err := s.book.Add(ctx, book.NewContact{
		Name:     in.Name,
		Phone:    in.Phone,
		Email:    in.Email,
		Address:  in.Address,
		Group:    in.Group,
		Favorite: in.Favorite,
	})
	if err != nil {
		return nil, s.toHTTPError(err, "adding contact")
	}
	return message("Contact added successfully"), nil
}

func (s *Server) handleUpdateContact(ctx context.Context, input *updateContactInput) (*messageOutput, error) {
	p := input.Body
	err := s.book.Update(ctx, input.Name, book.ContactPatch{
		Phone:    p.Phone,
		Email:    p.Email,
		Address:  p.Address,
		Group:    p.Group,
		Favorite: p.Favorite,
	})
	if err != nil {
		return nil, s.toHTTPError(err, "updating contact")
	}
	return message("Contact updated successfully"), nil
}

func (s *Server) handleDeleteContact(ctx context.Context, input *nameInput) (*messageOutput, error) {
	if err := s.book.Delete(ctx, input.Name); err != nil {
		return nil, s.toHTTPError(err, "deleting contact")
	}
	return message("Contact deleted successfully"), nil
}

func (s *Server) handleSearch(ctx context.Context, input *searchInput) (*contactsOutput, error) {
	matches := s.book.Search(ctx, input.Query)
	out := make(map[string]store.Contact, len(matches))
	for _, m := range matches {
		out[m.Name] = m.Contact
	}
	return &contactsOutput{Body: out}, nil
}

func (s *Server) handleAdvancedSearch(ctx context.Context, input *advancedSearchInput) (*contactsOutput, error) {
	return &contactsOutput{Body: s.book.AdvancedSearch(ctx, book.Filter{
		Phone:   input.Phone,
		Email:   input.Email,
		Address: input.Address,
	})}, nil
}

func (s *Server) handleFavorites(ctx context.Context, _ *struct{}) (*contactsOutput, error) {
	return &contactsOutput{Body: s.book.Favorites(ctx)}, nil
}

func (s *Server) handleAddRelationship(ctx context.Context, input *relationshipInput) (*messageOutput, error) {
	if err := s.book.AddRelationship(ctx, input.A, input.B); err != nil {
		return nil, s.toHTTPError(err, "adding relationship")
	}
	return message(fmt.Sprintf("Relationship added between %s and %s", input.A, input.B)), nil
}

func (s *Server) handleGraph(ctx context.Context, _ *struct{}) (*listsOutput, error) {
	return &listsOutput{Body: s.book.Graph(ctx)}, nil
}

func (s *Server) handleLogCall(ctx context.Context, input *nameInput) (*callOutput, error) {
	ts, err := s.book.RecordCall(ctx, input.Name)
	if err != nil {
		return nil, s.toHTTPError(err, "logging call")
	}
	out := &callOutput{}
	out.Body.Message = fmt.Sprintf("Call logged for %s", input.Name)
	out.Body.Timestamp = ts
	return out, nil
}

func (s *Server) handleCallLog(ctx context.Context, _ *struct{}) (*listsOutput, error) {
	return &listsOutput{Body: s.book.CallLog(ctx)}, nil
}

func (s *Server) handleStatus(ctx context.Context, _ *struct{}) (*statusOutput, error) {
	out := &statusOutput{}
	out.Body.Status = "ok"
	out.Body.Stats = s.book.Stats(ctx)
	return out, nil
}

// toHTTPError maps a book error to a huma error. Client errors carry the
// book's message; server errors are logged and reported generically.
func (s *Server) toHTTPError(err error, op string) error {
	status := sigilerr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op, "error", err, "code", string(sigilerr.CodeOf(err)))
		return huma.Error500InternalServerError(op + " failed")
	}
	return huma.NewError(status, err.Error())
}
