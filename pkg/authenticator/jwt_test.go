package authenticator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type tokenInfo struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func TestTokenEngine(t *testing.T) {
	engine := NewTokenEngine[tokenInfo]("secret", time.Minute)

	token, err := engine.Generate("user1", tokenInfo{ID: "user1", Role: "user"})
	require.NoError(t, err)

	info, err := engine.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user1", info.ID)
	require.Equal(t, "user", info.Role)
}

func TestTokenEngineExpired(t *testing.T) {
	engine := NewTokenEngine[tokenInfo]("secret", -time.Minute)

	token, err := engine.Generate("user1", tokenInfo{ID: "user1"})
	require.NoError(t, err)

	_, err = engine.Verify(token)
	require.Error(t, err)
}

func TestTokenEngineWrongSecret(t *testing.T) {
	engine := NewTokenEngine[tokenInfo]("secret", time.Minute)
	another := NewTokenEngine[tokenInfo]("another-secret", time.Minute)

	token, err := engine.Generate("user1", tokenInfo{ID: "user1"})
	require.NoError(t, err)

	_, err = another.Verify(token)
	require.Error(t, err)
}
