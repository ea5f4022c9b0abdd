package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingAddress   = errors.New("delivery address is missing")
	ErrInvalidFrequency = errors.New("delivery frequency is invalid")
)

type OrderStatus string

const (
	OrderPlaced    OrderStatus = "placed"
	OrderScheduled OrderStatus = "scheduled"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Frequency of a recurring delivery. FrequencyOnce means no recurrence.
type Frequency string

const (
	FrequencyOnce     Frequency = "once"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

type Address struct {
	Line1      string
	City       string
	PostalCode string
	Notes      string
}

func (a Address) IsEmpty() bool {
	return strings.TrimSpace(a.Line1) == "" || strings.TrimSpace(a.City) == ""
}

type DeliverySchedule struct {
	Frequency    Frequency
	PreferredDay time.Weekday
}

func (s DeliverySchedule) Validate() error {
	switch s.Frequency {
	case "", FrequencyOnce, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return nil
	default:
		return ErrInvalidFrequency
	}
}

type Order struct {
	ID       string
	OwnerID  string
	Lines    []CartLine
	Address  Address
	Schedule DeliverySchedule
	Total    Money
	Status   OrderStatus

	CreatedAt time.Time
}

type CheckoutRequest struct {
	Address  Address
	Schedule DeliverySchedule
}
