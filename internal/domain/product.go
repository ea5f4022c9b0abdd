package domain

type Product struct {
	ID        string
	Name      string
	Kind      string
	Price     Money
	Available bool
}
