package api

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"BookDesk/internal/config"
	"BookDesk/internal/model"
)

// Endpoints carries the deployment-specific endpoint identifiers. The gateway
// treats them as opaque strings joined to the base URL.
type Endpoints struct {
	Available   string
	Borrow      string
	Loans       string
	Return      string
	ResolveName string
}

// NewFromConfig builds a gateway client wired to the configured backend.
func NewFromConfig(cfg *config.Config, log *zap.Logger) *Client {
	c := New(cfg.ServerURL, log)
	c.endpoints = Endpoints{
		Available:   cfg.AvailableEndpoint,
		Borrow:      cfg.BorrowEndpoint,
		Loans:       cfg.LoansEndpoint,
		Return:      cfg.ReturnEndpoint,
		ResolveName: cfg.ResolveNameEndpoint,
	}
	return c
}

type borrowRequest struct {
	BookID string `json:"bookId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type returnRequest struct {
	RecordID string `json:"recordId"`
}

type findNameRequest struct {
	Email string `json:"email"`
}

type findNameResult struct {
	Name string `json:"name"`
}

// LoanRow is the wire shape of one row in the on-loan listing.
type LoanRow struct {
	RecordID     string `json:"record_id"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	Number       string `json:"number"`
	Author       string `json:"author"`
	BorrowerName string `json:"borrower_name"`
	BorrowDate   string `json:"borrow_date"`
}

// AvailableBooks lists the books currently up for borrowing.
func (c *Client) AvailableBooks(ctx context.Context) model.Outcome[[]model.Book] {
	return request[[]model.Book](ctx, c, http.MethodGet, c.endpoints.Available, nil)
}

// Borrow submits a borrow for bookID on behalf of the given borrower.
func (c *Client) Borrow(ctx context.Context, bookID, email, name string) model.Outcome[json.RawMessage] {
	return c.Call(ctx, http.MethodPost, c.endpoints.Borrow, borrowRequest{BookID: bookID, Email: email, Name: name})
}

// BorrowedBooks lists the loans currently open, in wire form.
func (c *Client) BorrowedBooks(ctx context.Context) model.Outcome[[]LoanRow] {
	return request[[]LoanRow](ctx, c, http.MethodGet, c.endpoints.Loans, nil)
}

// ReturnBook closes the loan identified by recordID.
func (c *Client) ReturnBook(ctx context.Context, recordID string) model.Outcome[json.RawMessage] {
	return c.Call(ctx, http.MethodPatch, c.endpoints.Return, returnRequest{RecordID: recordID})
}

// FindUserName resolves a display name from an email; Data is empty when the
// backend knows no such user.
func (c *Client) FindUserName(ctx context.Context, email string) model.Outcome[string] {
	out := request[findNameResult](ctx, c, http.MethodPost, c.endpoints.ResolveName, findNameRequest{Email: email})
	if !out.Success {
		return model.Fail[string](out.Error)
	}
	return model.Ok(out.Data.Name)
}
