// Package suggestion handles feature suggestions submitted from the portal.
package suggestion

import (
	"errors"
	"time"
)

// Validation errors.
var (
	ErrInvalidType  = errors.New("unknown suggestion type")
	ErrEmptyDetails = errors.New("suggestion details are empty")
	ErrTooLong      = errors.New("suggestion details are too long")
)

// Suggestion types offered by the form.
const (
	TypeUX      = "UI/UX 개선"
	TypeFeature = "신규 기능 추가"
	TypeBug     = "오류 신고"
	TypeOther   = "기타"
)

// DefaultType is preselected in the form.
const DefaultType = TypeUX

// MaxDetailsLength bounds the details field, in runes.
const MaxDetailsLength = 2000

// Types lists the accepted types in form order.
var Types = []string{TypeUX, TypeFeature, TypeBug, TypeOther}

// ValidType reports whether t is one of Types.
func ValidType(t string) bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// Suggestion is a stored submission.
type Suggestion struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

// Input is the form payload.
type Input struct {
	Type    string `json:"type"`
	Details string `json:"details"`
}
