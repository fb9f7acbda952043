// Package scan manages bounded compare-scan sessions: up to three distinct
// products held side by side before bulk insertion into the cart.
package scan

import (
	"time"

	"github.com/vedaro/shopdesk/internal/catalog"
)

// Mode is the comparison layout: grid below two items, table once comparing.
type Mode string

const (
	ModeGrid  Mode = "grid"
	ModeTable Mode = "table"
)

// MaxItems is the session capacity; a fourth distinct scan is rejected.
const MaxItems = 3

// session is one live scan session. It exists only between view enter and
// view exit and never persists.
type session struct {
	items       []catalog.Product
	lastCode    string
	lastScanAt  time.Time
	notice      string
	noticeUntil time.Time
	touchedAt   time.Time
}

func (s *session) mode() Mode {
	if len(s.items) >= 2 {
		return ModeTable
	}
	return ModeGrid
}

func (s *session) holds(identifier string) bool {
	for _, p := range s.items {
		if p.Identifier == identifier {
			return true
		}
	}
	return false
}

func (s *session) remove(identifier string) bool {
	for i, p := range s.items {
		if p.Identifier == identifier {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// View is the session read model handed to the UI. The duplicate notice is
// transient and self-clearing.
type View struct {
	Items            []catalog.Product `json:"items"`
	Mode             Mode              `json:"mode"`
	DuplicateNotice  string            `json:"duplicate_notice,omitempty"`
}

func (s *session) view(now time.Time) View {
	v := View{
		Items: append([]catalog.Product(nil), s.items...),
		Mode:  s.mode(),
	}
	if s.notice != "" && now.Before(s.noticeUntil) {
		v.DuplicateNotice = s.notice
	}
	return v
}
