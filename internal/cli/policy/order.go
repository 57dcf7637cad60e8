// Package policy holds the pure ordering and due-date rules of the lending
// desk. Nothing here touches the network or the clock implicitly.
package policy

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"BookDesk/internal/model"
)

// CompareByCode orders shelf codes of the form "<prefix>-<ordinal>". Books
// without a code sort after all coded books; equal prefixes fall back to
// numeric ordinal comparison, so "A01-2" precedes "A01-10".
func CompareByCode(a, b string) int {
	if a == "" && b == "" {
		return 0
	}
	if a == "" {
		return 1
	}
	if b == "" {
		return -1
	}
	aPrefix, aOrd := splitCode(a)
	bPrefix, bOrd := splitCode(b)
	if c := strings.Compare(aPrefix, bPrefix); c != 0 {
		return c
	}
	switch {
	case aOrd < bOrd:
		return -1
	case aOrd > bOrd:
		return 1
	}
	return 0
}

// splitCode cuts a shelf code at the first dash. A non-numeric or missing
// ordinal counts as 0.
func splitCode(code string) (string, int) {
	prefix, rest, _ := strings.Cut(code, "-")
	n, _ := strconv.Atoi(rest)
	return prefix, n
}

// SortBooks orders the available listing by shelf code.
func SortBooks(books []model.Book) {
	sort.SliceStable(books, func(i, j int) bool {
		return CompareByCode(books[i].Number, books[j].Number) < 0
	})
}

// LoanSorter orders the on-loan listing: borrower name first under a
// locale-aware collator, shelf code second.
type LoanSorter struct {
	coll *collate.Collator
}

// NewLoanSorter builds a sorter for the given BCP 47 locale, falling back to
// Traditional Chinese when the locale does not parse.
func NewLoanSorter(locale string) *LoanSorter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.TraditionalChinese
	}
	return &LoanSorter{coll: collate.New(tag)}
}

// Compare orders two loan records for the loan view.
func (s *LoanSorter) Compare(a, b model.LoanRecord) int {
	if c := s.coll.CompareString(a.BorrowerName, b.BorrowerName); c != 0 {
		return c
	}
	return CompareByCode(a.Number, b.Number)
}

// Sort orders loan records in place.
func (s *LoanSorter) Sort(recs []model.LoanRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return s.Compare(recs[i], recs[j]) < 0
	})
}
