package base

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayType decides how a job's unit price turns into a salary amount.
type PayType string

const (
	PayTypeFixed     PayType = "FIXED"     // unit price per day
	PayTypeHourly    PayType = "HOURLY"    // unit price per hour worked
	PayTypePiecework PayType = "PIECEWORK" // unit price per piece
)

func (p PayType) IsValid() bool {
	switch p {
	case PayTypeFixed, PayTypeHourly, PayTypePiecework:
		return true
	}
	return false
}

// Base is a farm or site that posts jobs and receives workers.
type Base struct {
	ID        string
	Name      string
	Address   *string
	OwnerID   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Job struct {
	ID        string
	BaseID    string
	Title     string
	PayType   PayType
	UnitPrice decimal.Decimal
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
