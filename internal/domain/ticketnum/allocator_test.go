package ticketnum

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Format(t *testing.T) {
	require.Equal(t, "0000", Format(0))
	require.Equal(t, "0007", Format(7))
	require.Equal(t, "0099", Format(99))
	require.Equal(t, "9999", Format(9999))
}

func Test_Available(t *testing.T) {
	numbers := Available(5, map[string]bool{"0001": true, "0003": true})
	require.Equal(t, []string{"0002", "0004", "0005"}, numbers)

	require.Empty(t, Available(2, map[string]bool{"0001": true, "0002": true}))
}

func Test_Pick(t *testing.T) {
	available := Available(100, nil)

	picked, err := Pick(available, 10)
	require.NoError(t, err)
	require.Len(t, picked, 10)
	require.True(t, sort.StringsAreSorted(picked))

	seen := map[string]bool{}
	for _, number := range picked {
		require.False(t, seen[number])
		seen[number] = true
	}

	_, err = Pick(available, 101)
	require.Error(t, err)

	_, err = Pick(available, 0)
	require.Error(t, err)
}

func Test_Pick_exhaustsPool(t *testing.T) {
	available := Available(8, nil)
	picked, err := Pick(available, 8)
	require.NoError(t, err)
	require.Equal(t, available, picked)
}

func Test_Draw_weightedByNumbers(t *testing.T) {
	pool := []PoolEntry{
		{TicketID: "small", UserID: "alice", Numbers: []string{"0001"}},
		{TicketID: "big", UserID: "bob", Numbers: Available(100, map[string]bool{"0001": true})},
	}

	const trials = 2000
	bigWins := 0
	for i := 0; i < trials; i++ {
		winner, err := Draw(pool)
		require.NoError(t, err)
		if winner.TicketID == "big" {
			bigWins++
			require.Equal(t, "bob", winner.UserID)
		} else {
			require.Equal(t, "0001", winner.Number)
		}
	}

	// Expected win rate of the big ticket is 99%. With 2000 trials the
	// chance of dropping below 96% is negligible.
	require.Greater(t, bigWins, trials*96/100)
	require.Less(t, bigWins, trials)
}

func Test_Draw_emptyPool(t *testing.T) {
	_, err := Draw(nil)
	require.ErrorIs(t, err, ErrEmptyPool)

	_, err = Draw([]PoolEntry{{TicketID: "t", UserID: "u"}})
	require.ErrorIs(t, err, ErrEmptyPool)
}
