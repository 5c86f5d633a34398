package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trabach-softwares/ouro-rifa-api/pkg/enum"
)

type GlobalRole string

var (
	RoleSuperAdmin = enum.New(GlobalRole("super_admin"))
	RoleAdmin      = enum.New(GlobalRole("admin"))
	RoleUser       = enum.New(GlobalRole("user"))
)

var GlobalAdminRoles = []GlobalRole{RoleSuperAdmin, RoleAdmin}

// PaymentSettings holds the raffle owner's receiving account. Only the pix
// key participates in payment generation; the rest is display data.
type PaymentSettings struct {
	PixKey      string `json:"pix_key"`
	BankName    string `json:"bank_name"`
	Agency      string `json:"agency"`
	Account     string `json:"account"`
	AccountType string `json:"account_type"`
}

func (s *PaymentSettings) Scan(value any) error {
	switch t := value.(type) {
	case string:
		return json.Unmarshal([]byte(t), s)
	case []byte:
		return json.Unmarshal(t, s)
	default:
		return fmt.Errorf("cannot scan invalid data type %T", value)
	}
}

func (s PaymentSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

type NotificationSettings struct {
	EmailNewPurchase    bool `json:"email_new_purchase"`
	EmailRaffleComplete bool `json:"email_raffle_complete"`
	SmsNewPurchase      bool `json:"sms_new_purchase"`
	SmsRaffleComplete   bool `json:"sms_raffle_complete"`
	PushNotifications   bool `json:"push_notifications"`
}

func (s *NotificationSettings) Scan(value any) error {
	switch t := value.(type) {
	case string:
		return json.Unmarshal([]byte(t), s)
	case []byte:
		return json.Unmarshal(t, s)
	default:
		return fmt.Errorf("cannot scan invalid data type %T", value)
	}
}

func (s NotificationSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

type User struct {
	Base

	Name         string
	Email        string `gorm:"unique"`
	Password     string
	Phone        string
	Role         GlobalRole `gorm:"default:user"`
	IsActive     bool       `gorm:"default:true"`
	TotalSpent   float64
	LastPurchase time.Time
	LastLogin    time.Time

	PaymentSettings      PaymentSettings      `gorm:"type:text"`
	NotificationSettings NotificationSettings `gorm:"type:text"`
}
