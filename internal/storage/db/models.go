package db

// User is a marketplace account. Role is one of administrator, seller or
// customer.
type User struct {
	ID           uint64
	Name         string
	Email        string
	Role         string
	PasswordHash string
}

type Session struct {
	Token     string
	UserID    uint64
	ExpiresAt int64
}

type Option struct {
	Name  string
	Value string
}

type UserMeta struct {
	UserID uint64
	Key    string
	Value  string
}

type Module struct {
	ID     string
	Active bool
}

type Coupon struct {
	ID           uint64
	Code         string
	Amount       string
	DiscountType string
}

type TaxRate struct {
	ID       uint64
	Country  string
	Rate     string
	Name     string
	TaxClass string
}

type Withdraw struct {
	ID        uint64
	UserID    uint64
	Amount    string
	Method    string
	Status    string
	CreatedAt int64
}
