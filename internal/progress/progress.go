// Package progress persists per-book reading progress in a local badger
// key-value store.
package progress

import (
	"fmt"
	"strings"
	"time"
)

// KeyPrefix is prepended to the book id to form the storage key.
const KeyPrefix = "reading_progress_"

// Progress is the reading position of one book.
type Progress struct {
	BookID        string    `json:"bookId"`
	CurrentSpread int       `json:"currentSpread"`
	TotalSpreads  int       `json:"totalSpreads"`
	LastRead      time.Time `json:"lastRead"`
	Completed     bool      `json:"completed"`
}

// New builds a record for the given position, deriving Completed. The
// last spread counts as completed since spreads are numbered from zero.
func New(bookID string, current, total int, at time.Time) Progress {
	return Progress{
		BookID:        bookID,
		CurrentSpread: current,
		TotalSpreads:  total,
		LastRead:      at.UTC(),
		Completed:     total > 0 && current+1 >= total,
	}
}

// Validate checks the record invariants.
func (p Progress) Validate() error {
	switch {
	case strings.TrimSpace(p.BookID) == "":
		return ErrInvalid.WithMessage("empty book id")
	case p.TotalSpreads < 1:
		return ErrInvalid.WithMessage(fmt.Sprintf("total spreads %d < 1", p.TotalSpreads))
	case p.CurrentSpread < 0 || p.CurrentSpread >= p.TotalSpreads:
		return ErrInvalid.WithMessage(fmt.Sprintf("spread %d outside [0, %d)", p.CurrentSpread, p.TotalSpreads))
	}
	return nil
}

// Percent is the share of the book read, 0 to 100. Completed books are 100.
func (p Progress) Percent() int {
	if p.Completed {
		return 100
	}
	if p.TotalSpreads <= 0 {
		return 0
	}
	return (p.CurrentSpread*100 + p.TotalSpreads/2) / p.TotalSpreads
}

// Clamp returns the stored spread moved into [0, total). A book with no
// spreads restores to 0.
func (p Progress) Clamp(total int) int {
	if total <= 0 || p.CurrentSpread < 0 {
		return 0
	}
	if p.CurrentSpread >= total {
		return total - 1
	}
	return p.CurrentSpread
}

func key(bookID string) []byte {
	return []byte(KeyPrefix + bookID)
}
