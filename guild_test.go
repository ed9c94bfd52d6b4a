package unb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewGuildPermissions verifies the bitfield decode.
func TestNewGuildPermissions(t *testing.T) {
	tests := []struct {
		bitwise int64
		economy bool
		items   bool
	}{
		{0, false, false},
		{1, true, false},
		{2, false, true},
		{3, true, true},
		{7, true, true},
	}

	for _, tt := range tests {
		perms := newGuildPermissions(tt.bitwise)
		assert.Equal(t, tt.economy, perms.Economy, "bitwise %d", tt.bitwise)
		assert.Equal(t, tt.items, perms.Items, "bitwise %d", tt.bitwise)
		assert.Equal(t, tt.bitwise, perms.Bitwise)
	}
}

// TestFetchPermissions verifies the endpoint path and decode, including a
// string-encoded bitfield.
func TestFetchPermissions(t *testing.T) {
	app := setupApplication(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/applications/@me/guilds/903190105455394856", r.URL.Path)
		fmt.Fprint(w, `{"permissions": "3"}`)
	})

	guild, err := app.GetGuild(903190105455394856)
	require.NoError(t, err)

	perms, err := guild.FetchPermissions(context.Background())
	require.NoError(t, err)
	assert.True(t, perms.Economy)
	assert.True(t, perms.Items)
}

// TestFetchUser verifies the single-user endpoint: rank is absent and the
// balance fields decode, including Infinity.
func TestFetchUser(t *testing.T) {
	app := setupApplication(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/guilds/10/users/292653654", r.URL.Path)
		fmt.Fprint(w, `{"user_id": "292653654", "cash": 500, "bank": "Infinity", "total": "Infinity"}`)
	})

	guild, err := app.GetGuild(10)
	require.NoError(t, err)

	u, err := guild.FetchUser(context.Background(), "292653654")
	require.NoError(t, err)

	assert.Equal(t, int64(292653654), u.ID)
	assert.Nil(t, u.Rank)
	assert.Equal(t, Finite(500), u.Cash)
	assert.Equal(t, Unlimited, u.Bank)
	assert.Equal(t, Unlimited, u.Total)
	assert.Same(t, guild, u.Guild())
}

// TestLeaderboard verifies rank decoding and the listing query parameters.
func TestLeaderboard(t *testing.T) {
	app := setupApplication(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/guilds/10/users", r.URL.Path)
		assert.Equal(t, "cash", r.URL.Query().Get("sort"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))

		fmt.Fprint(w, `{
			"users": [
				{"user_id": "1", "rank": 1, "cash": 900, "bank": 100, "total": 1000},
				{"user_id": "2", "rank": "2", "cash": 500, "bank": 0, "total": 500}
			],
			"page": 1,
			"total_pages": 1
		}`)
	})

	guild, err := app.GetGuild(10)
	require.NoError(t, err)

	users, err := Collect(guild.Leaderboard(context.Background(), LeaderboardSortCash, 2))
	require.NoError(t, err)
	require.Len(t, users, 2)

	require.NotNil(t, users[0].Rank)
	assert.Equal(t, 1, *users[0].Rank)
	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, Finite(900), users[0].Cash)

	require.NotNil(t, users[1].Rank)
	assert.Equal(t, 2, *users[1].Rank)
}

// TestLeaderboard_DefaultSort verifies the empty sort falls back to total.
func TestLeaderboard_DefaultSort(t *testing.T) {
	app := setupApplication(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "total", r.URL.Query().Get("sort"))
		fmt.Fprint(w, `{"users": [], "total_pages": 1}`)
	})

	guild, err := app.GetGuild(10)
	require.NoError(t, err)

	users, err := Collect(guild.Leaderboard(context.Background(), "", 0))
	require.NoError(t, err)
	assert.Empty(t, users)
}

// TestFetchItem verifies the item endpoint and that the requested ID is
// authoritative over the payload.
func TestFetchItem(t *testing.T) {
	app := setupApplication(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/guilds/10/items/55", r.URL.Path)
		fmt.Fprint(w, `{"name": "Fishing Rod", "price": "250", "is_inventory": true}`)
	})

	guild, err := app.GetGuild(10)
	require.NoError(t, err)

	it, err := guild.FetchItem(context.Background(), 55)
	require.NoError(t, err)

	assert.Equal(t, int64(55), it.ID)
	assert.Equal(t, "Fishing Rod", it.Name)
	require.NotNil(t, it.Price)
	assert.Equal(t, int64(250), *it.Price)
}

// TestGuild_IconURL verifies the CDN URL forms.
func TestGuild_IconURL(t *testing.T) {
	build := func(icon string) *Guild {
		return newGuild(nil, 903190105455394856, guildPayload{Icon: icon})
	}

	assert.Equal(t, "", build("").IconURL())
	assert.Equal(t,
		"https://cdn.discordapp.com/icons/903190105455394856/13df298e.png",
		build("13df298e").IconURL())
	assert.Equal(t,
		"https://cdn.discordapp.com/icons/903190105455394856/a_13df298e.gif",
		build("a_13df298e").IconURL())
}

// TestGuild_LeaderboardURL verifies the vanity code takes precedence.
func TestGuild_LeaderboardURL(t *testing.T) {
	g := newGuild(nil, 42, guildPayload{})
	assert.Equal(t, "https://unbelievaboat.com/leaderboard/42", g.LeaderboardURL())

	g = newGuild(nil, 42, guildPayload{VanityCode: "testing"})
	assert.Equal(t, "https://unbelievaboat.com/leaderboard/testing", g.LeaderboardURL())

	// The numeric form is always available through the embedded reference.
	assert.Equal(t, "https://unbelievaboat.com/leaderboard/42", g.PartialGuild.LeaderboardURL())
}

// TestGuildPayload_Decode verifies null icons decode to the empty string.
func TestGuildPayload_Decode(t *testing.T) {
	var payload guildPayload
	require.NoError(t, json.Unmarshal([]byte(`{"name": "x", "icon": null, "owner_id": "7"}`), &payload))
	assert.Equal(t, "", payload.Icon)
	assert.Equal(t, flexID(7), payload.OwnerID)
}
