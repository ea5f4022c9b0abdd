package repository

import (
	"fmt"
	"time"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// JSON shapes persisted in the local store.

type moneyRecord struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
}

type cartLineRecord struct {
	ID        string       `json:"id"`
	ProductID string       `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Variant   string       `json:"variant"`
	State     string       `json:"state"`
	UnitPrice *moneyRecord `json:"unit_price,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type cartRecord struct {
	OwnerID   string           `json:"owner_id"`
	Lines     []cartLineRecord `json:"lines"`
	Removed   []string         `json:"removed,omitempty"`
	Cleared   bool             `json:"cleared,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type productRecord struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Kind      string      `json:"kind"`
	Price     moneyRecord `json:"price"`
	Available bool        `json:"available"`
}

type addressRecord struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type orderRecord struct {
	ID           string           `json:"id"`
	OwnerID      string           `json:"owner_id"`
	Lines        []cartLineRecord `json:"lines"`
	Address      addressRecord    `json:"address"`
	Frequency    string           `json:"frequency"`
	PreferredDay int              `json:"preferred_day"`
	Total        moneyRecord      `json:"total"`
	Status       string           `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
}

func toMoneyRecord(m domain.Money) moneyRecord {
	rec := moneyRecord{Amount: m.Amount}
	if m.Currency != (currency.Unit{}) {
		rec.Currency = m.Currency.String()
	}
	return rec
}

func (r moneyRecord) toDomain() (domain.Money, error) {
	if r.Currency == "" {
		return domain.Money{Amount: r.Amount}, nil
	}

	parsedCurrency, err := currency.ParseISO(r.Currency)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", r.Currency, err)
	}

	return domain.Money{Amount: r.Amount, Currency: parsedCurrency}, nil
}

func toCartLineRecord(l domain.CartLine) cartLineRecord {
	rec := cartLineRecord{
		ID:        l.ID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		Variant:   string(l.Variant),
		State:     string(l.State),
		UpdatedAt: l.UpdatedAt,
	}
	if !l.UnitPrice.IsZero() {
		price := toMoneyRecord(l.UnitPrice)
		rec.UnitPrice = &price
	}
	return rec
}

func (r cartLineRecord) toDomain() (domain.CartLine, error) {
	line := domain.CartLine{
		ID:        r.ID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		Variant:   domain.Variant(r.Variant),
		State:     domain.LineState(r.State),
		UpdatedAt: r.UpdatedAt,
	}
	if line.State == "" {
		line.State = domain.StateConfirmed
	}
	if r.UnitPrice != nil {
		price, err := r.UnitPrice.toDomain()
		if err != nil {
			return domain.CartLine{}, fmt.Errorf("line[%s] unit price: %w", r.ID, err)
		}
		line.UnitPrice = price
	}
	return line, nil
}

func toCartLineRecords(lines []domain.CartLine) []cartLineRecord {
	records := make([]cartLineRecord, 0, len(lines))
	for _, l := range lines {
		records = append(records, toCartLineRecord(l))
	}
	return records
}

func mapCartLineRecords(records []cartLineRecord) ([]domain.CartLine, error) {
	var lines []domain.CartLine

	for _, rec := range records {
		line, err := rec.toDomain()
		if err != nil {
			return nil, fmt.Errorf("toDomain: %w", err)
		}

		lines = append(lines, line)
	}

	return lines, nil
}

func toProductRecord(p domain.Product) productRecord {
	return productRecord{
		ID:        p.ID,
		Name:      p.Name,
		Kind:      p.Kind,
		Price:     toMoneyRecord(p.Price),
		Available: p.Available,
	}
}

func (r productRecord) toDomain() (domain.Product, error) {
	price, err := r.Price.toDomain()
	if err != nil {
		return domain.Product{}, fmt.Errorf("product[%s] price: %w", r.ID, err)
	}

	return domain.Product{
		ID:        r.ID,
		Name:      r.Name,
		Kind:      r.Kind,
		Price:     price,
		Available: r.Available,
	}, nil
}

func toAddressRecord(a domain.Address) addressRecord {
	return addressRecord{Line1: a.Line1, City: a.City, PostalCode: a.PostalCode, Notes: a.Notes}
}

func (r addressRecord) toDomain() domain.Address {
	return domain.Address{Line1: r.Line1, City: r.City, PostalCode: r.PostalCode, Notes: r.Notes}
}

func toOrderRecord(o domain.Order) orderRecord {
	return orderRecord{
		ID:           o.ID,
		OwnerID:      o.OwnerID,
		Lines:        toCartLineRecords(o.Lines),
		Address:      toAddressRecord(o.Address),
		Frequency:    string(o.Schedule.Frequency),
		PreferredDay: int(o.Schedule.PreferredDay),
		Total:        toMoneyRecord(o.Total),
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
	}
}

func (r orderRecord) toDomain() (domain.Order, error) {
	lines, err := mapCartLineRecords(r.Lines)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapCartLineRecords: %w", err)
	}

	total, err := r.Total.toDomain()
	if err != nil {
		return domain.Order{}, fmt.Errorf("order[%s] total: %w", r.ID, err)
	}

	return domain.Order{
		ID:      r.ID,
		OwnerID: r.OwnerID,
		Lines:   lines,
		Address: r.Address.toDomain(),
		Schedule: domain.DeliverySchedule{
			Frequency:    domain.Frequency(r.Frequency),
			PreferredDay: time.Weekday(r.PreferredDay),
		},
		Total:     total,
		Status:    domain.OrderStatus(r.Status),
		CreatedAt: r.CreatedAt,
	}, nil
}
