package domain

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// TempIDPrefix marks line ids generated on the client before the server confirmed them.
const TempIDPrefix = "tmp-"

var (
	ErrEmptyProductID  = errors.New("product id is empty")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidVariant  = errors.New("variant is invalid")
	ErrLineNotFound    = errors.New("cart line not found")
)

// Variant distinguishes buying a new cylinder from swapping an empty one.
type Variant string

const (
	VariantNew  Variant = "NEW"
	VariantSwap Variant = "SWAP"
)

func (v Variant) Valid() bool {
	switch v {
	case VariantNew, VariantSwap:
		return true
	default:
		return false
	}
}

// LineState tracks a line's agreement with the server.
type LineState string

const (
	StateConfirmed LineState = "confirmed"
	StatePending   LineState = "pending"
	StateFailed    LineState = "failed"
)

type CartLine struct {
	ID        string
	ProductID string
	Quantity  int
	Variant   Variant
	State     LineState
	UnitPrice Money

	UpdatedAt time.Time
}

func (l CartLine) IsTemporary() bool {
	return IsTempID(l.ID)
}

func (l CartLine) Total() Money {
	return l.UnitPrice.Times(l.Quantity)
}

func (l CartLine) Validate() error {
	if strings.TrimSpace(l.ProductID) == "" {
		return ErrEmptyProductID
	}
	if l.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if !l.Variant.Valid() {
		return ErrInvalidVariant
	}
	return nil
}

func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// CartSnapshot is the ordered cart of one owner plus the work queued while offline.
type CartSnapshot struct {
	OwnerID string
	Lines   []CartLine

	// Removed holds server ids deleted while offline.
	Removed []string
	// Cleared is set when the cart was cleared while offline.
	Cleared bool

	UpdatedAt time.Time
}

func (s CartSnapshot) Clone() CartSnapshot {
	s.Lines = slices.Clone(s.Lines)
	s.Removed = slices.Clone(s.Removed)
	return s
}

func (s CartSnapshot) IndexOf(lineID string) int {
	return slices.IndexFunc(s.Lines, func(l CartLine) bool { return l.ID == lineID })
}

// HasOutbox reports whether there is offline work waiting for Sync.
func (s CartSnapshot) HasOutbox() bool {
	if s.Cleared || len(s.Removed) > 0 {
		return true
	}
	return slices.ContainsFunc(s.Lines, func(l CartLine) bool { return l.State == StatePending })
}

func (s CartSnapshot) Total() (Money, error) {
	var total Money
	for _, l := range s.Lines {
		var err error
		total, err = total.Add(l.Total())
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
