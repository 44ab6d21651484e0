package handlers

import (
	"context"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
	"github.com/ellavondegurechaff/progression/internal/gateways/memory"
)

func TestRecordMessage(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	engine, err := rewards.NewEngine(store, rewards.DefaultCatalog(), nil)
	require.NoError(t, err)

	outcomes, err := recordMessage(ctx, engine, discord.User{ID: 7, Bot: true})
	require.NoError(t, err)
	assert.Empty(t, outcomes)
	_, err = store.GetProgression(ctx, 7)
	require.ErrorIs(t, err, rewards.ErrNotFound, "bots are never provisioned")

	outcomes, err = recordMessage(ctx, engine, discord.User{ID: 8})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Completed)
	assert.Equal(t, "first_message", outcomes[0].Quest.ID)

	outcomes, err = recordMessage(ctx, engine, discord.User{ID: 8})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].AlreadyCompleted)

	state, err := store.GetProgression(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(5), state.CoinBalance)
}
