package unbtest

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	unb "github.com/jsamuelsen/unbelievaboat-go"
)

// testToken is a syntactically valid application token for app_id 42.
func testToken(t *testing.T) string {
	t.Helper()

	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"app_id": "42"}`))

	return "header." + payload + ".signature"
}

// setup starts a fake server with one seeded guild and a client against it.
func setup(t *testing.T) (*Server, *unb.PartialGuild) {
	t.Helper()

	token := testToken(t)

	server := NewServer(token)
	t.Cleanup(server.Close)

	expires := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	server.AddGuild(&Guild{
		ID:          10,
		Name:        "Testing",
		Icon:        "a_13df298e",
		MemberCount: 215,
		OwnerID:     1,
		Symbol:      "$",
		Premium:     true,
		VanityCode:  "testing",
		Permissions: 3,
		Users: map[int64]*Balance{
			1: {Cash: unb.Finite(900), Bank: unb.Finite(100)},
			2: {Cash: unb.Finite(50), Bank: unb.Unlimited},
			3: {Cash: unb.Finite(500), Bank: unb.Finite(0)},
		},
		Items: []*Item{
			{ID: 55, Name: "Fishing Rod", Price: 250, Usable: true, StockRemaining: 10, ExpiresAt: &expires},
			{ID: 56, Name: "Bait", Price: 10, UnlimitedStock: true},
		},
		Inventories: map[int64]map[int64]int64{
			1: {55: 1, 56: 12},
		},
	})

	app, err := unb.New(token,
		unb.WithBaseURL(server.URL),
		unb.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)

	guild, err := app.GetGuild(10)
	require.NoError(t, err)

	return server, guild
}

// TestServer_RejectsBadToken verifies the auth middleware speaks the real
// API's 401 shape.
func TestServer_RejectsBadToken(t *testing.T) {
	server, _ := setup(t)

	app, err := unb.New(testToken(t)+"-wrong", unb.WithBaseURL(server.URL))
	require.NoError(t, err)

	guild, err := app.GetGuild(10)
	require.NoError(t, err)

	_, err = guild.FetchPermissions(context.Background())
	assert.True(t, unb.IsInvalidToken(err))
}

// TestServer_GuildAndPermissions verifies the metadata endpoints.
func TestServer_GuildAndPermissions(t *testing.T) {
	_, guild := setup(t)
	ctx := context.Background()

	perms, err := guild.FetchPermissions(ctx)
	require.NoError(t, err)
	assert.True(t, perms.Economy)
	assert.True(t, perms.Items)

	_, err = guild.FetchUser(ctx, 9999)
	assert.True(t, unb.IsNotFound(err))
}

// TestServer_BalanceFlow verifies reads and writes round-trip through the
// wire format, including Infinity.
func TestServer_BalanceFlow(t *testing.T) {
	_, guild := setup(t)
	ctx := context.Background()

	u, err := guild.FetchUser(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, unb.Finite(50), u.Cash)
	assert.Equal(t, unb.Unlimited, u.Bank)
	assert.Equal(t, unb.Unlimited, u.Total)
	assert.Nil(t, u.Rank)

	// A delta update leaves the untouched field alone.
	cash := unb.Finite(-20)
	u, err = u.UpdateBalance(ctx, unb.BalancePatch{Cash: &cash, Reason: "fine"})
	require.NoError(t, err)
	assert.Equal(t, unb.Finite(30), u.Cash)
	assert.Equal(t, unb.Unlimited, u.Bank)

	// An absolute set replaces it.
	bank := unb.Finite(1000)
	u, err = u.SetBalance(ctx, unb.BalancePatch{Bank: &bank})
	require.NoError(t, err)
	assert.Equal(t, unb.Finite(30), u.Cash)
	assert.Equal(t, unb.Finite(1000), u.Bank)
	assert.Equal(t, unb.Finite(1030), u.Total)
}

// TestServer_Leaderboard verifies ordering, ranks, and sort selection.
func TestServer_Leaderboard(t *testing.T) {
	_, guild := setup(t)
	ctx := context.Background()

	users, err := unb.Collect(guild.Leaderboard(ctx, unb.LeaderboardSortTotal, 0))
	require.NoError(t, err)
	require.Len(t, users, 3)

	// User 2 has an unlimited bank, so it tops the total board.
	assert.Equal(t, int64(2), users[0].ID)
	require.NotNil(t, users[0].Rank)
	assert.Equal(t, 1, *users[0].Rank)
	assert.Equal(t, int64(1), users[1].ID)
	assert.Equal(t, int64(3), users[2].ID)

	// Sorting by cash reorders: 900, 500, 50.
	users, err = unb.Collect(guild.Leaderboard(ctx, unb.LeaderboardSortCash, 2))
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, int64(3), users[1].ID)
}

// TestServer_Store verifies item listing, fetching, and deletion.
func TestServer_Store(t *testing.T) {
	_, guild := setup(t)
	ctx := context.Background()

	items, err := unb.Collect(guild.StoreItems(ctx, unb.ItemSortPrice, 0))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Bait", items[0].Name)
	assert.Equal(t, "Fishing Rod", items[1].Name)

	it, err := guild.FetchItem(ctx, 55)
	require.NoError(t, err)
	assert.Equal(t, "Fishing Rod", it.Name)
	require.NotNil(t, it.StockRemaining)
	assert.Equal(t, unb.Finite(10), *it.StockRemaining)
	require.NotNil(t, it.ExpiresAt)

	// Bait has unlimited stock.
	it, err = guild.FetchItem(ctx, 56)
	require.NoError(t, err)
	require.NotNil(t, it.StockRemaining)
	assert.True(t, it.StockRemaining.IsUnlimited())

	_, err = guild.FetchItem(ctx, 999)
	assert.True(t, unb.IsNotFound(err))
}

// TestServer_DeleteItemCascade verifies cascade deletion clears inventories.
func TestServer_DeleteItemCascade(t *testing.T) {
	_, guild := setup(t)
	ctx := context.Background()

	it, err := guild.FetchItem(ctx, 55)
	require.NoError(t, err)
	require.NoError(t, it.Delete(ctx, true))

	_, err = guild.FetchItem(ctx, 55)
	assert.True(t, unb.IsNotFound(err))

	user, err := guild.GetUser(1)
	require.NoError(t, err)

	quantity, err := user.ItemQuantity(ctx, 55)
	require.NoError(t, err)
	assert.Equal(t, int64(0), quantity)

	// The other holding is untouched.
	quantity, err = user.ItemQuantity(ctx, 56)
	require.NoError(t, err)
	assert.Equal(t, int64(12), quantity)
}

// TestServer_InventoryFlow verifies the inventory endpoints end to end.
func TestServer_InventoryFlow(t *testing.T) {
	_, guild := setup(t)
	ctx := context.Background()

	user, err := guild.GetUser(1)
	require.NoError(t, err)

	items, err := unb.Collect(user.Inventory(ctx, "", 0))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(55), items[0].ID)
	require.NotNil(t, items[0].Quantity)
	assert.Equal(t, int64(1), *items[0].Quantity)

	// Add three more rods.
	it, err := user.AddItem(ctx, 55, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(55), it.ID)
	require.NotNil(t, it.Quantity)
	assert.Equal(t, int64(4), *it.Quantity)

	// Remove down to one.
	require.NoError(t, user.RemoveItem(ctx, 55, 3))

	quantity, err := user.ItemQuantity(ctx, 55)
	require.NoError(t, err)
	assert.Equal(t, int64(1), quantity)

	// Removing the rest deletes the entry entirely.
	require.NoError(t, user.RemoveItem(ctx, 55, 1))
	assert.Error(t, user.RemoveItem(ctx, 55, 1))

	quantity, err = user.ItemQuantity(ctx, 55)
	require.NoError(t, err)
	assert.Equal(t, int64(0), quantity)
}

// TestServer_AddItemFromOrigin verifies copying a discontinued item from
// another user's inventory.
func TestServer_AddItemFromOrigin(t *testing.T) {
	_, guild := setup(t)
	ctx := context.Background()

	// Discontinue the rod but keep user 1's copy.
	it, err := guild.FetchItem(ctx, 55)
	require.NoError(t, err)
	require.NoError(t, it.Delete(ctx, false))

	user, err := guild.GetUser(2)
	require.NoError(t, err)

	// A plain add now fails: the item is gone from the store.
	_, err = user.AddItem(ctx, 55, 1, nil)
	assert.True(t, unb.IsNotFound(err))

	// Copying from user 1's inventory works.
	got, err := user.AddItem(ctx, 55, 1, &unb.AddItemOptions{OriginInventoryUser: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(55), got.ID)

	quantity, err := user.ItemQuantity(ctx, 55)
	require.NoError(t, err)
	assert.Equal(t, int64(1), quantity)
}

// TestServer_Metrics verifies the Prometheus endpoint is served.
func TestServer_Metrics(t *testing.T) {
	server, guild := setup(t)

	_, err := guild.FetchPermissions(context.Background())
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "unbtest_requests_total")
}
