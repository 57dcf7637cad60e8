package model

import "time"

// Book is one lendable title as served by the lending backend.
// Borrower fields are present only while the book is on loan.
type Book struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Number       string `json:"number"` // shelf code, "A01-1" style, may be empty
	Author       string `json:"author,omitempty"`
	BorrowerName string `json:"borrowerName,omitempty"`
	BorrowedAt   string `json:"borrowedAt,omitempty"`
}

// OnLoan reports whether the book carries a complete loan marking.
// A book is either available (neither field set) or on loan (both set).
func (b Book) OnLoan() bool {
	return b.BorrowerName != "" && b.BorrowedAt != ""
}

// LoanRecord is one borrow event. RecordID identifies the event itself and is
// the only valid key for a return: the same book can accrue many records over
// its history, so BookID alone does not pin down a loan.
type LoanRecord struct {
	RecordID     string
	BookID       string
	Name         string
	Number       string
	Author       string
	BorrowerName string
	BorrowedAt   time.Time
}
