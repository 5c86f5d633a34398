package model

type Ticket struct {
	ID       string `json:"id"`
	RaffleID string `json:"raffle_id"`
	UserID   string `json:"user_id"`

	TicketNumbers []string `json:"ticket_numbers"`
	Quantity      int      `json:"quantity"`
	TotalAmount   float64  `json:"total_amount"`

	PaymentStatus string `json:"payment_status"`
	PaymentMethod string `json:"payment_method"`
	PaymentDate   string `json:"payment_date,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`

	IsWinner bool `json:"is_winner"`

	RaffleInfo *RaffleSummary `json:"raffle_info,omitempty"`
}

type BuyTicketsRequest struct {
	RaffleID      string `json:"raffle_id"`
	Quantity      int    `json:"quantity"`
	PaymentMethod string `json:"payment_method"`
}

type BuyTicketsResponse struct {
	Ticket Ticket `json:"ticket"`
	// NextStep tells the client what to do with the reservation; it is
	// always "payment" on success.
	NextStep string `json:"next_step"`
}

type CancelTicketRequest struct {
	ID string `json:"id"`
}

type CancelTicketResponse struct {
	Ticket Ticket `json:"ticket"`
}

type GetTicketRequest struct {
	ID string `json:"id"`
}

type GetTicketResponse struct {
	Ticket Ticket         `json:"ticket"`
	Raffle *RaffleSummary `json:"raffle,omitempty"`
}

type GetMyTicketsRequest struct {
	RaffleID string `json:"raffle_id"`
	Status   string `json:"status"`
}

type GetMyTicketsResponse struct {
	Tickets []Ticket `json:"tickets"`
}
