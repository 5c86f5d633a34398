package model

type RaffleStatistics struct {
	SoldTickets      int     `json:"sold_tickets"`
	AvailableTickets int     `json:"available_tickets"`
	Revenue          float64 `json:"revenue"`
	ProgressPercent  float64 `json:"progress_percent"`
}

type GetRaffleStatisticsRequest struct {
	RaffleID string `json:"raffle_id"`
}

type GetRaffleStatisticsResponse struct {
	Statistics RaffleStatistics `json:"statistics"`
}

type GetDashboardRequest struct{}

type DashboardSale struct {
	RaffleTitle string  `json:"raffle_title"`
	Customer    string  `json:"customer"`
	Quantity    int     `json:"quantity"`
	Amount      float64 `json:"amount"`
	SoldAt      string  `json:"sold_at"`
}

type GetDashboardResponse struct {
	TotalRaffles  int             `json:"total_raffles"`
	ActiveRaffles int             `json:"active_raffles"`
	SoldTickets   int             `json:"sold_tickets"`
	Revenue       float64         `json:"revenue"`
	RecentSales   []DashboardSale `json:"recent_sales"`
}
