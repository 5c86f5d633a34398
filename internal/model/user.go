package model

type PaymentSettings struct {
	PixKey      string `json:"pix_key"`
	BankName    string `json:"bank_name"`
	Agency      string `json:"agency"`
	Account     string `json:"account"`
	AccountType string `json:"account_type"`
}

type NotificationSettings struct {
	EmailNewPurchase    bool `json:"email_new_purchase"`
	EmailRaffleComplete bool `json:"email_raffle_complete"`
	SmsNewPurchase      bool `json:"sms_new_purchase"`
	SmsRaffleComplete   bool `json:"sms_raffle_complete"`
	PushNotifications   bool `json:"push_notifications"`
}

type User struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Role         string  `json:"role"`
	IsActive     bool    `json:"is_active"`
	TotalSpent   float64 `json:"total_spent"`
	LastPurchase string  `json:"last_purchase,omitempty"`
	LastLogin    string  `json:"last_login,omitempty"`

	PaymentSettings      PaymentSettings      `json:"payment_settings"`
	NotificationSettings NotificationSettings `json:"notification_settings"`
}

type ShortUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type GetTopBuyersRequest struct {
	Limit int `json:"limit"`
}

type TopBuyer struct {
	User       ShortUser `json:"user"`
	TotalSpent float64   `json:"total_spent"`
}

type GetTopBuyersResponse struct {
	Buyers []TopBuyer `json:"buyers"`
}
