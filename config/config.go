package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	Database  DatabaseConfigs
	ApiServer ServerConfigs
	Auth      AuthConfigs
	Redis     RedisConfigs
	Raffle    RaffleConfigs
	Payment   PaymentConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	LogLevel string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string
}

type AuthConfigs struct {
	TokenSecret     string
	AccessTokenName string
	Expiration      time.Duration

	// Login attempts are counted per email in a TTL window.
	MaxLoginAttempts    int
	LoginAttemptsWindow time.Duration
}

type RedisConfigs struct {
	Addr string
}

type RaffleConfigs struct {
	MinTickets            int
	MaxTickets            int
	MaxTicketsPerPurchase int
}

type PaymentConfigs struct {
	// DefaultPixKey receives the payment when the raffle owner has not
	// configured a key of their own.
	DefaultPixKey string
	PixExpiration time.Duration
}
