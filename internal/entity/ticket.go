package entity

import (
	"database/sql"

	"github.com/trabach-softwares/ouro-rifa-api/pkg/enum"
)

type TicketPaymentStatus string

var (
	TicketPending   = enum.New(TicketPaymentStatus("pending"))
	TicketPaid      = enum.New(TicketPaymentStatus("paid"))
	TicketCancelled = enum.New(TicketPaymentStatus("cancelled"))
)

type Ticket struct {
	Base

	RaffleID string
	Raffle   Raffle `gorm:"foreignKey:RaffleID"`

	UserID string
	User   User `gorm:"foreignKey:UserID"`

	// TicketNumbers holds zero-padded number strings, unique within the
	// raffle across all non-cancelled tickets once paid.
	TicketNumbers Array[string] `gorm:"type:text"`
	Quantity      int

	// TotalAmount snapshots quantity * ticket price at reservation time.
	TotalAmount float64

	PaymentStatus TicketPaymentStatus `gorm:"default:pending"`
	PaymentMethod string
	PaymentDate   sql.NullTime
	TransactionID string

	IsWinner bool
}
