package model

type Payment struct {
	ID       string `json:"id"`
	TicketID string `json:"ticket_id"`
	UserID   string `json:"user_id"`
	RaffleID string `json:"raffle_id"`

	Amount float64 `json:"amount"`
	Method string  `json:"method"`
	Status string  `json:"status"`

	TransactionID string `json:"transaction_id,omitempty"`
	ProcessedAt   string `json:"processed_at,omitempty"`

	PixData map[string]any `json:"pix_data,omitempty"`

	Customer *ShortUser     `json:"customer,omitempty"`
	Raffle   *RaffleSummary `json:"raffle,omitempty"`
}

type GeneratePixRequest struct {
	TicketID string `json:"ticket_id"`
}

type GeneratePixResponse struct {
	Payment Payment `json:"payment"`
}

type ConfirmPaymentRequest struct {
	// ID accepts either a payment id or a ticket id; payment providers call
	// back with whichever reference they were handed.
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id"`
}

type ConfirmPaymentResponse struct {
	Payment Payment `json:"payment"`
	Ticket  Ticket  `json:"ticket"`
	// AlreadyConfirmed reports that this confirmation had been applied
	// before and the call was a no-op.
	AlreadyConfirmed bool `json:"already_confirmed"`
}

type GetPaymentRequest struct {
	ID string `json:"id"`
}

type GetPaymentResponse struct {
	Payment Payment `json:"payment"`
}

type GetMyPaymentsRequest struct {
	Status string `json:"status"`
}

type GetMyPaymentsResponse struct {
	Payments []Payment `json:"payments"`
}

type GetSalesPaymentsRequest struct {
	Status string `json:"status"`
}

type GetSalesPaymentsResponse struct {
	Payments []Payment `json:"payments"`
}

type GetAllPaymentsRequest struct {
	Status string `json:"status"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type GetAllPaymentsResponse struct {
	Payments []Payment `json:"payments"`
}
