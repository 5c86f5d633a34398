package entity

import (
	"database/sql"

	"github.com/trabach-softwares/ouro-rifa-api/pkg/enum"
)

type PaymentStatus string

var (
	PaymentPending    = enum.New(PaymentStatus("pending"))
	PaymentProcessing = enum.New(PaymentStatus("processing"))
	PaymentCompleted  = enum.New(PaymentStatus("completed"))
	PaymentFailed     = enum.New(PaymentStatus("failed"))
	PaymentCancelled  = enum.New(PaymentStatus("cancelled"))
)

type Payment struct {
	Base

	TicketID string
	Ticket   Ticket `gorm:"foreignKey:TicketID"`

	UserID string
	User   User `gorm:"foreignKey:UserID"`

	RaffleID string
	Raffle   Raffle `gorm:"foreignKey:RaffleID"`

	// Amount must equal the ticket's total amount.
	Amount float64
	Method string

	Status PaymentStatus `gorm:"default:pending"`

	// TransactionID and ProcessedAt are written only when the payment
	// completes; a completed payment is immutable.
	TransactionID string
	ProcessedAt   sql.NullTime

	// PixData keeps the generated instrument (qr code, key, identifier,
	// expiry) as an opaque JSON document.
	PixData Map `gorm:"type:text"`
}
