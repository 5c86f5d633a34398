package entity

import (
	"database/sql"
	"time"

	"github.com/trabach-softwares/ouro-rifa-api/pkg/enum"
)

type RaffleStatus string

var (
	RafflePending   = enum.New(RaffleStatus("pending"))
	RaffleActive    = enum.New(RaffleStatus("active"))
	RafflePaused    = enum.New(RaffleStatus("paused"))
	RaffleCompleted = enum.New(RaffleStatus("completed"))
	RaffleCancelled = enum.New(RaffleStatus("cancelled"))
)

type Raffle struct {
	Base

	OwnerID string
	Owner   User `gorm:"foreignKey:OwnerID"`

	Title       string
	Description string
	Image       string
	Category    string

	TicketPrice  float64
	TotalTickets int

	// SoldTickets and Revenue are denormalized from paid tickets. The source
	// of truth stays in the ticket table; the statistic domain recomputes
	// them from scratch at any time.
	SoldTickets int
	Revenue     float64

	Status RaffleStatus `gorm:"default:pending"`

	// The winner pair is written exactly once, at draw time.
	WinnerUserID sql.NullString
	WinnerTicket string
	DrawDate     sql.NullTime

	StartDate time.Time
	EndDate   sql.NullTime

	// Zero means no per-person cap.
	MaxTicketsPerPerson int

	Commission int
}
