package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BookDesk/internal/cli/api"
	"BookDesk/internal/cli/auth"
	"BookDesk/internal/cli/policy"
	fsrepo "BookDesk/internal/cli/repo/fs"
	"BookDesk/internal/config"
	"BookDesk/internal/model"
)

func testConfig(serverURL string) *config.Config {
	return &config.Config{
		ServerURL:           serverURL,
		AvailableEndpoint:   "/books/available",
		BorrowEndpoint:      "/books/borrow",
		LoansEndpoint:       "/books/borrowed",
		ReturnEndpoint:      "/books/return",
		ResolveNameEndpoint: "/users/find-name",
	}
}

func mintCredential(t *testing.T, email, name string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "sub-1",
		"email": email,
		"name":  name,
	})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func signedInBridge(t *testing.T, email, name string) *auth.Bridge {
	t.Helper()
	store := fsrepo.IdentityStore{Path: filepath.Join(t.TempDir(), "identity.json")}
	b := auth.NewBridge(auth.NewCredentialSDK(mintCredential(t, email, name)), store, nil, time.Second, nil)
	require.NoError(t, b.Initialize(context.Background()))
	_, err := b.SignIn(context.Background())
	require.NoError(t, err)
	return b
}

func unauthenticatedBridge(t *testing.T) *auth.Bridge {
	t.Helper()
	store := fsrepo.IdentityStore{Path: filepath.Join(t.TempDir(), "identity.json")}
	b := auth.NewBridge(auth.NewCredentialSDK(""), store, nil, time.Second, nil)
	require.NoError(t, b.Initialize(context.Background()))
	return b
}

func newCatalog(serverURL string, bridge *auth.Bridge) *CatalogLocal {
	cfg := testConfig(serverURL)
	return NewCatalogLocal(api.NewFromConfig(cfg, nil), bridge, policy.NewLoanSorter("zh-TW"), nil)
}

func TestLoadAvailable_SortsAndReplaces(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":"b1","name":"Second","number":"B01-2"},
			{"id":"b2","name":"Third"},
			{"id":"b3","name":"First","number":"A01-2"}
		]`))
	}))
	defer ts.Close()

	c := newCatalog(ts.URL, unauthenticatedBridge(t))
	require.NoError(t, c.LoadAvailable(context.Background()))
	books := c.Available()
	require.Len(t, books, 3)
	assert.Equal(t, "b3", books[0].ID)
	assert.Equal(t, "b1", books[1].ID)
	assert.Equal(t, "b2", books[2].ID, "uncoded book sorts last")
}

func TestBorrow_FailureLeavesListUntouched(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/books/available", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"b1","name":"One","number":"A01-1"},{"id":"b2","name":"Two","number":"A01-2"}]`))
	})
	r.Post("/books/borrow", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"book already borrowed"}`))
	})
	ts := httptest.NewServer(r)
	defer ts.Close()

	c := newCatalog(ts.URL, signedInBridge(t, "reader@odd.team", "Reader"))
	require.NoError(t, c.LoadAvailable(context.Background()))

	err := c.Borrow(context.Background(), "b2")
	require.EqualError(t, err, "book already borrowed")
	assert.Len(t, c.Available(), 2, "failed borrow must not shrink the list")
}

func TestBorrow_SuccessRemovesExactlyMatchedBook(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/books/available", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"b1","name":"One"},{"id":"b2","name":"Two"},{"id":"b3","name":"Three"}]`))
	})
	var got struct {
		BookID string `json:"bookId"`
		Email  string `json:"email"`
		Name   string `json:"name"`
	}
	r.Post("/books/borrow", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	ts := httptest.NewServer(r)
	defer ts.Close()

	c := newCatalog(ts.URL, signedInBridge(t, "reader@odd.team", "Reader"))
	require.NoError(t, c.LoadAvailable(context.Background()))

	require.NoError(t, c.Borrow(context.Background(), "b2"))
	books := c.Available()
	require.Len(t, books, 2)
	for _, b := range books {
		assert.NotEqual(t, "b2", b.ID)
	}
	assert.Equal(t, "reader@odd.team", got.Email)
	assert.Equal(t, "Reader", got.Name)
}

func TestBorrow_UnauthenticatedWithoutPromptFails(t *testing.T) {
	var borrowHits int
	r := chi.NewRouter()
	r.Post("/books/borrow", func(w http.ResponseWriter, _ *http.Request) {
		borrowHits++
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	ts := httptest.NewServer(r)
	defer ts.Close()

	c := newCatalog(ts.URL, unauthenticatedBridge(t))
	err := c.Borrow(context.Background(), "b1")
	require.ErrorIs(t, err, auth.ErrPromptUnavailable)
	assert.Zero(t, borrowHits, "no borrow may be submitted without an identity")
}

func TestBorrow_ResolvesMissingDisplayName(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/users/find-name", func(w http.ResponseWriter, req *http.Request) {
		var fr struct {
			Email string `json:"email"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&fr))
		require.Equal(t, "noname@odd.team", fr.Email)
		_, _ = w.Write([]byte(`{"name":"Resolved Name"}`))
	})
	var got struct {
		Name string `json:"name"`
	}
	r.Post("/books/borrow", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	ts := httptest.NewServer(r)
	defer ts.Close()

	c := newCatalog(ts.URL, signedInBridge(t, "noname@odd.team", ""))
	require.NoError(t, c.Borrow(context.Background(), "b1"))
	assert.Equal(t, "Resolved Name", got.Name)
}

func TestLoadOnLoan_MapsAndSorts(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"record_id":"r2","id":"b2","name":"Two","number":"A01-2","borrower_name":"Bob","borrow_date":"2025-01-03"},
			{"record_id":"r1","id":"b1","name":"One","number":"A01-1","borrower_name":"Alice","borrow_date":"2025-01-02T08:00:00Z"},
			{"record_id":"r3","id":"b3","name":"Three","number":"","borrower_name":"Alice","borrow_date":"whenever"}
		]`))
	}))
	defer ts.Close()

	c := newCatalog(ts.URL, unauthenticatedBridge(t))
	require.NoError(t, c.LoadOnLoan(context.Background()))
	recs := c.OnLoan()
	require.Len(t, recs, 3)

	// Alice before Bob; Alice's uncoded loan after her coded one
	assert.Equal(t, "r1", recs[0].RecordID)
	assert.Equal(t, "r3", recs[1].RecordID)
	assert.Equal(t, "r2", recs[2].RecordID)

	assert.Equal(t, "b1", recs[0].BookID)
	assert.Equal(t, 2025, recs[0].BorrowedAt.Year())
	assert.True(t, recs[1].BorrowedAt.IsZero(), "unreadable borrow date maps to zero time")
}

func TestReturn_KeyedByRecordID(t *testing.T) {
	var returned []string
	r := chi.NewRouter()
	r.Get("/books/borrowed", func(w http.ResponseWriter, _ *http.Request) {
		// two historical loans of the same book
		_, _ = w.Write([]byte(`[
			{"record_id":"r1","id":"b1","name":"One","number":"A01-1","borrower_name":"Alice","borrow_date":"2025-01-02"},
			{"record_id":"r2","id":"b1","name":"One","number":"A01-1","borrower_name":"Bob","borrow_date":"2025-01-05"}
		]`))
	})
	r.Patch("/books/return", func(w http.ResponseWriter, req *http.Request) {
		var rr struct {
			RecordID string `json:"recordId"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&rr))
		returned = append(returned, rr.RecordID)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	ts := httptest.NewServer(r)
	defer ts.Close()

	c := newCatalog(ts.URL, unauthenticatedBridge(t))
	require.NoError(t, c.LoadOnLoan(context.Background()))
	require.Len(t, c.OnLoan(), 2)

	require.NoError(t, c.Return(context.Background(), "r1"))
	recs := c.OnLoan()
	require.Len(t, recs, 1, "only the matched record may leave the list")
	assert.Equal(t, "r2", recs[0].RecordID)
	assert.Equal(t, "b1", recs[0].BookID, "the sibling loan of the same book survives")
	assert.Equal(t, []string{"r1"}, returned)
}

func TestReturn_FailureLeavesListUntouched(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/books/borrowed", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"record_id":"r1","id":"b1","name":"One","number":"A01-1","borrower_name":"Alice","borrow_date":"2025-01-02"}]`))
	})
	r.Patch("/books/return", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	ts := httptest.NewServer(r)
	defer ts.Close()

	c := newCatalog(ts.URL, unauthenticatedBridge(t))
	require.NoError(t, c.LoadOnLoan(context.Background()))

	err := c.Return(context.Background(), "r1")
	require.EqualError(t, err, api.MsgNotFound)
	assert.Len(t, c.OnLoan(), 1)
}

// lendingBackend is a stateful fake of the remote system of record.
type lendingBackend struct {
	mu      sync.Mutex
	books   []model.Book
	loans   []map[string]string
	nextRec int
}

func (lb *lendingBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/books/available", func(w http.ResponseWriter, _ *http.Request) {
		lb.mu.Lock()
		defer lb.mu.Unlock()
		_ = json.NewEncoder(w).Encode(lb.books)
	})
	r.Post("/books/borrow", func(w http.ResponseWriter, req *http.Request) {
		var br struct {
			BookID string `json:"bookId"`
			Email  string `json:"email"`
			Name   string `json:"name"`
		}
		if err := json.NewDecoder(req.Body).Decode(&br); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		lb.mu.Lock()
		defer lb.mu.Unlock()
		for i, b := range lb.books {
			if b.ID == br.BookID {
				lb.nextRec++
				lb.loans = append(lb.loans, map[string]string{
					"record_id":     fmt.Sprintf("rec-%d", lb.nextRec),
					"id":            b.ID,
					"name":          b.Name,
					"number":        b.Number,
					"author":        b.Author,
					"borrower_name": br.Name,
					"borrow_date":   time.Now().Format("2006-01-02"),
				})
				lb.books = append(lb.books[:i], lb.books[i+1:]...)
				_, _ = w.Write([]byte(`{"ok":true}`))
				return
			}
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"book not available"}`))
	})
	r.Get("/books/borrowed", func(w http.ResponseWriter, _ *http.Request) {
		lb.mu.Lock()
		defer lb.mu.Unlock()
		_ = json.NewEncoder(w).Encode(lb.loans)
	})
	return r
}

func TestBorrowFlow_EndToEnd(t *testing.T) {
	backend := &lendingBackend{books: []model.Book{
		{ID: "b1", Name: "One", Number: "A01-1"},
		{ID: "b2", Name: "Two", Number: "A01-2"},
		{ID: "b3", Name: "Three", Number: "A02-1"},
	}}
	ts := httptest.NewServer(backend.router())
	defer ts.Close()

	c := newCatalog(ts.URL, signedInBridge(t, "reader@odd.team", "Reader"))
	ctx := context.Background()

	require.NoError(t, c.LoadAvailable(ctx))
	require.Len(t, c.Available(), 3)

	require.NoError(t, c.Borrow(ctx, "b2"))
	books := c.Available()
	require.Len(t, books, 2)
	for _, b := range books {
		assert.NotEqual(t, "b2", b.ID)
	}

	require.NoError(t, c.LoadOnLoan(ctx))
	recs := c.OnLoan()
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, "b2", rec.BookID)
	assert.Equal(t, "Reader", rec.BorrowerName)
	require.False(t, rec.BorrowedAt.IsZero())
	assert.Equal(t, policy.DueDate(rec.BorrowedAt), rec.BorrowedAt.AddDate(0, 0, policy.LoanPeriodDays))
}
