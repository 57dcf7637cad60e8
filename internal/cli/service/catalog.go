package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"BookDesk/internal/cli/api"
	"BookDesk/internal/cli/auth"
	"BookDesk/internal/cli/policy"
	"BookDesk/internal/model"
)

// Catalog is the use-case level view of the lending desk: two independently
// fetched lists plus the borrow/return mutations.
type Catalog interface {
	// LoadAvailable fetches, sorts and wholesale-replaces the available list.
	LoadAvailable(ctx context.Context) error

	// LoadOnLoan fetches, maps and wholesale-replaces the on-loan list.
	LoadOnLoan(ctx context.Context) error

	// Borrow submits a borrow for the signed-in user, driving sign-in first
	// when needed. On success the book leaves the available list; on failure
	// the list is untouched and the gateway message is returned.
	Borrow(ctx context.Context, bookID string) error

	// Return closes the loan identified by recordID. Matching is by record
	// id, never by book id.
	Return(ctx context.Context, recordID string) error

	// Available returns the held available list.
	Available() []model.Book

	// OnLoan returns the held on-loan list.
	OnLoan() []model.LoanRecord
}

// CatalogLocal is the in-memory implementation of Catalog. The lists are
// snapshots: a failed mutation never touches them, and a successful one only
// removes the confirmed entry, so no rollback machinery exists.
type CatalogLocal struct {
	api    *api.Client
	bridge *auth.Bridge
	sorter *policy.LoanSorter
	log    *zap.Logger

	mu        sync.Mutex
	available []model.Book
	onLoan    []model.LoanRecord
}

// NewCatalogLocal builds the catalog over the given gateway and bridge.
func NewCatalogLocal(gw *api.Client, bridge *auth.Bridge, sorter *policy.LoanSorter, log *zap.Logger) *CatalogLocal {
	if log == nil {
		log = zap.NewNop()
	}
	if sorter == nil {
		sorter = policy.NewLoanSorter("zh-TW")
	}
	return &CatalogLocal{api: gw, bridge: bridge, sorter: sorter, log: log}
}

func (c *CatalogLocal) LoadAvailable(ctx context.Context) error {
	out := c.api.AvailableBooks(ctx)
	if !out.Success {
		return errors.New(out.Error)
	}
	books := out.Data
	policy.SortBooks(books)
	c.mu.Lock()
	c.available = books
	c.mu.Unlock()
	return nil
}

func (c *CatalogLocal) LoadOnLoan(ctx context.Context) error {
	out := c.api.BorrowedBooks(ctx)
	if !out.Success {
		return errors.New(out.Error)
	}
	recs := make([]model.LoanRecord, 0, len(out.Data))
	for _, row := range out.Data {
		rec := model.LoanRecord{
			RecordID:     row.RecordID,
			BookID:       row.ID,
			Name:         row.Name,
			Number:       row.Number,
			Author:       row.Author,
			BorrowerName: row.BorrowerName,
		}
		if row.BorrowDate != "" {
			t, err := policy.ParseBorrowDate(row.BorrowDate)
			if err != nil {
				c.log.Warn("loan row with unreadable borrow date",
					zap.String("record_id", row.RecordID),
					zap.Error(err))
			} else {
				rec.BorrowedAt = t
			}
		}
		recs = append(recs, rec)
	}
	c.sorter.Sort(recs)
	c.mu.Lock()
	c.onLoan = recs
	c.mu.Unlock()
	return nil
}

func (c *CatalogLocal) Borrow(ctx context.Context, bookID string) error {
	id := c.bridge.Current()
	if id == nil {
		var err error
		if id, err = c.bridge.SignIn(ctx); err != nil {
			return err
		}
	}
	name := id.Name
	if name == "" {
		// the credential may carry no display name; ask the backend
		if out := c.api.FindUserName(ctx, id.Email); out.Success && out.Data != "" {
			name = out.Data
		}
	}

	out := c.api.Borrow(ctx, bookID, id.Email, name)
	if !out.Success {
		return errors.New(out.Error)
	}

	// removal strictly after confirmed success
	c.mu.Lock()
	kept := c.available[:0]
	for _, b := range c.available {
		if b.ID != bookID {
			kept = append(kept, b)
		}
	}
	c.available = kept
	c.mu.Unlock()
	return nil
}

func (c *CatalogLocal) Return(ctx context.Context, recordID string) error {
	out := c.api.ReturnBook(ctx, recordID)
	if !out.Success {
		return errors.New(out.Error)
	}

	c.mu.Lock()
	kept := c.onLoan[:0]
	for _, r := range c.onLoan {
		if r.RecordID != recordID {
			kept = append(kept, r)
		}
	}
	c.onLoan = kept
	c.mu.Unlock()
	return nil
}

func (c *CatalogLocal) Available() []model.Book {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Book(nil), c.available...)
}

func (c *CatalogLocal) OnLoan() []model.LoanRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.LoanRecord(nil), c.onLoan...)
}
