package ticketnum

import (
	"errors"
	"fmt"

	"github.com/trabach-softwares/ouro-rifa-api/pkg/crypto"
)

// Ticket numbers are opaque zero-padded strings. A raffle with N tickets
// uses the range [1, N], so "0001" is the first number.
const numberDigits = 4

var ErrEmptyPool = errors.New("no tickets in pool")

func Format(n int) string {
	return fmt.Sprintf("%0*d", numberDigits, n)
}

// Available returns every number of the raffle not present in taken, in
// ascending order.
func Available(totalTickets int, taken map[string]bool) []string {
	numbers := make([]string, 0, totalTickets-len(taken))
	for i := 1; i <= totalTickets; i++ {
		number := Format(i)
		if !taken[number] {
			numbers = append(numbers, number)
		}
	}

	return numbers
}

// Pick chooses quantity numbers uniformly without replacement. The result is
// sorted ascending as a side effect of the selection walk.
func Pick(available []string, quantity int) ([]string, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("invalid quantity %d", quantity)
	}

	if quantity > len(available) {
		return nil, fmt.Errorf("not enough numbers, got %d, want %d", len(available), quantity)
	}

	picked := make([]string, 0, quantity)
	remaining := len(available)
	need := quantity
	for _, number := range available {
		if need == 0 {
			break
		}

		// Selection sampling. Each remaining number is taken with
		// probability need/remaining, which yields a uniform
		// combination without a shuffle.
		if crypto.RandIntn(remaining) < need {
			picked = append(picked, number)
			need--
		}
		remaining--
	}

	return picked, nil
}

type PoolEntry struct {
	TicketID string
	UserID   string
	Numbers  []string
}

type Winner struct {
	TicketID string
	UserID   string
	Number   string
}

// Draw selects one winning number uniformly over every number in the pool, so
// a ticket holding more numbers wins proportionally more often.
func Draw(pool []PoolEntry) (Winner, error) {
	total := 0
	for _, entry := range pool {
		total += len(entry.Numbers)
	}

	if total == 0 {
		return Winner{}, ErrEmptyPool
	}

	target := crypto.RandIntn(total)
	for _, entry := range pool {
		if target < len(entry.Numbers) {
			return Winner{
				TicketID: entry.TicketID,
				UserID:   entry.UserID,
				Number:   entry.Numbers[target],
			}, nil
		}

		target -= len(entry.Numbers)
	}

	// Unreachable, target is always inside the pool.
	return Winner{}, ErrEmptyPool
}
