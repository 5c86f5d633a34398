package model

type Raffle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	Category    string `json:"category,omitempty"`

	TicketPrice  float64 `json:"ticket_price"`
	TotalTickets int     `json:"total_tickets"`
	SoldTickets  int     `json:"sold_tickets"`
	Revenue      float64 `json:"revenue"`

	Status string    `json:"status"`
	Owner  ShortUser `json:"owner"`

	Winner       *ShortUser `json:"winner,omitempty"`
	WinnerTicket string     `json:"winner_ticket,omitempty"`
	DrawDate     string     `json:"draw_date,omitempty"`

	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`

	MaxTicketsPerPerson int `json:"max_tickets_per_person,omitempty"`
}

type RaffleSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Image  string `json:"image,omitempty"`
	Status string `json:"status"`
}

type CreateRaffleRequest struct {
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	Image               string  `json:"image"`
	Category            string  `json:"category"`
	TicketPrice         float64 `json:"ticket_price"`
	TotalTickets        int     `json:"total_tickets"`
	EndDate             string  `json:"end_date"`
	MaxTicketsPerPerson int     `json:"max_tickets_per_person"`
}

type CreateRaffleResponse struct {
	Raffle Raffle `json:"raffle"`
}

type UpdateRaffleRequest struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Image               string   `json:"image"`
	Category            string   `json:"category"`
	TicketPrice         *float64 `json:"ticket_price"`
	TotalTickets        *int     `json:"total_tickets"`
	EndDate             string   `json:"end_date"`
	MaxTicketsPerPerson *int     `json:"max_tickets_per_person"`
}

type UpdateRaffleResponse struct {
	Raffle Raffle `json:"raffle"`
}

type DeleteRaffleRequest struct {
	ID string `json:"id"`
}

type DeleteRaffleResponse struct{}

type UpdateRaffleStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type UpdateRaffleStatusResponse struct {
	Raffle Raffle `json:"raffle"`
}

type GetRaffleRequest struct {
	ID string `json:"id"`
}

type GetRaffleResponse struct {
	Raffle     Raffle           `json:"raffle"`
	Statistics RaffleStatistics `json:"statistics"`
}

type GetRafflesRequest struct {
	Status string `json:"status"`
	Search string `json:"search"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type GetRafflesResponse struct {
	Raffles []Raffle `json:"raffles"`
}

type GetMyRafflesRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetMyRafflesResponse struct {
	Raffles []Raffle `json:"raffles"`
}

type GetAllRafflesRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetAllRafflesResponse struct {
	Raffles []Raffle `json:"raffles"`
}

type DrawRaffleRequest struct {
	ID string `json:"id"`
}

type DrawWinner struct {
	User         ShortUser `json:"user"`
	TicketNumber string    `json:"ticket_number"`
}

type DrawRaffleResponse struct {
	Raffle Raffle     `json:"raffle"`
	Winner DrawWinner `json:"winner"`
}
