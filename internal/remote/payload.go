package remote

import (
	"fmt"
	"time"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Wire shapes of the order-service API.

type MoneyPayload struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
}

type LinePayload struct {
	ID        string        `json:"id,omitempty"`
	ProductID string        `json:"product_id"`
	Quantity  int           `json:"quantity"`
	Variant   string        `json:"variant"`
	UnitPrice *MoneyPayload `json:"unit_price,omitempty"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
}

type CartPayload struct {
	Lines []LinePayload `json:"lines"`
}

type QuantityPayload struct {
	Quantity int `json:"quantity"`
}

type ProductPayload struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Kind      string       `json:"kind"`
	Price     MoneyPayload `json:"price"`
	Available bool         `json:"available"`
}

type CatalogPayload struct {
	Products []ProductPayload `json:"products"`
}

type AddressPayload struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type SchedulePayload struct {
	Frequency    string `json:"frequency"`
	PreferredDay string `json:"preferred_day,omitempty"`
}

type OrderRequestPayload struct {
	Lines    []LinePayload   `json:"lines"`
	Address  AddressPayload  `json:"address"`
	Schedule SchedulePayload `json:"schedule"`
}

type OrderPayload struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Lines     []LinePayload   `json:"lines"`
	Address   AddressPayload  `json:"address"`
	Schedule  SchedulePayload `json:"schedule"`
	Total     MoneyPayload    `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewMoneyPayload(m domain.Money) MoneyPayload {
	p := MoneyPayload{Amount: m.Amount}
	if m.Currency != (currency.Unit{}) {
		p.Currency = m.Currency.String()
	}
	return p
}

func (p MoneyPayload) ToDomain() (domain.Money, error) {
	if p.Currency == "" {
		return domain.Money{Amount: p.Amount}, nil
	}

	parsedCurrency, err := currency.ParseISO(p.Currency)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", p.Currency, err)
	}

	return domain.Money{Amount: p.Amount, Currency: parsedCurrency}, nil
}

func NewLinePayload(l domain.CartLine) LinePayload {
	p := LinePayload{
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		Variant:   string(l.Variant),
	}
	if !l.IsTemporary() {
		p.ID = l.ID
	}
	if !l.UnitPrice.IsZero() {
		price := NewMoneyPayload(l.UnitPrice)
		p.UnitPrice = &price
	}
	return p
}

// ToDomain maps a server line; server lines are always confirmed.
func (p LinePayload) ToDomain() (domain.CartLine, error) {
	if p.ID == "" {
		return domain.CartLine{}, fmt.Errorf("line id is empty")
	}

	line := domain.CartLine{
		ID:        p.ID,
		ProductID: p.ProductID,
		Quantity:  p.Quantity,
		Variant:   domain.Variant(p.Variant),
		State:     domain.StateConfirmed,
	}
	if p.UpdatedAt != nil {
		line.UpdatedAt = *p.UpdatedAt
	}
	if p.UnitPrice != nil {
		price, err := p.UnitPrice.ToDomain()
		if err != nil {
			return domain.CartLine{}, fmt.Errorf("line[%s] unit price: %w", p.ID, err)
		}
		line.UnitPrice = price
	}

	return line, nil
}

func mapLinePayloads(payloads []LinePayload) ([]domain.CartLine, error) {
	lines := make([]domain.CartLine, 0, len(payloads))

	for _, p := range payloads {
		line, err := p.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("ToDomain: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, nil
}

func (p ProductPayload) ToDomain() (domain.Product, error) {
	price, err := p.Price.ToDomain()
	if err != nil {
		return domain.Product{}, fmt.Errorf("product[%s] price: %w", p.ID, err)
	}

	return domain.Product{
		ID:        p.ID,
		Name:      p.Name,
		Kind:      p.Kind,
		Price:     price,
		Available: p.Available,
	}, nil
}

func NewAddressPayload(a domain.Address) AddressPayload {
	return AddressPayload{Line1: a.Line1, City: a.City, PostalCode: a.PostalCode, Notes: a.Notes}
}

func (p AddressPayload) ToDomain() domain.Address {
	return domain.Address{Line1: p.Line1, City: p.City, PostalCode: p.PostalCode, Notes: p.Notes}
}

func NewSchedulePayload(s domain.DeliverySchedule) SchedulePayload {
	p := SchedulePayload{Frequency: string(s.Frequency)}
	if p.Frequency == "" {
		p.Frequency = string(domain.FrequencyOnce)
	}
	if p.Frequency != string(domain.FrequencyOnce) {
		p.PreferredDay = s.PreferredDay.String()
	}
	return p
}

func (p SchedulePayload) ToDomain() domain.DeliverySchedule {
	s := domain.DeliverySchedule{Frequency: domain.Frequency(p.Frequency)}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == p.PreferredDay {
			s.PreferredDay = d
		}
	}
	return s
}

func (p OrderPayload) ToDomain() (domain.Order, error) {
	lines, err := mapLinePayloads(p.Lines)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapLinePayloads: %w", err)
	}

	total, err := p.Total.ToDomain()
	if err != nil {
		return domain.Order{}, fmt.Errorf("order[%s] total: %w", p.ID, err)
	}

	return domain.Order{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Lines:     lines,
		Address:   p.Address.ToDomain(),
		Schedule:  p.Schedule.ToDomain(),
		Total:     total,
		Status:    domain.OrderStatus(p.Status),
		CreatedAt: p.CreatedAt,
	}, nil
}
