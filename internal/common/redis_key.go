package common

import "fmt"

func RedisKeyLoginAttempts(email string) string {
	return fmt.Sprintf("loginattempts:%s", email)
}

func RedisKeyTopBuyers() string {
	return "topbuyers"
}
