package unb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupUser builds a user reference against a test server.
func setupUser(t *testing.T, handler http.HandlerFunc) *PartialUser {
	t.Helper()

	app := setupApplication(t, handler)

	guild, err := app.GetGuild(10)
	require.NoError(t, err)

	user, err := guild.GetUser(20)
	require.NoError(t, err)

	return user
}

// TestUpdateBalance verifies the PATCH body: set fields are sent, the
// Infinity literal is used for Unlimited, and nil fields are omitted.
func TestUpdateBalance(t *testing.T) {
	var body map[string]json.RawMessage

	user := setupUser(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/guilds/10/users/20", r.URL.Path)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))

		fmt.Fprint(w, `{"user_id": "20", "cash": "Infinity", "bank": 200, "total": "Infinity"}`)
	})

	cash := Unlimited
	u, err := user.UpdateBalance(context.Background(), BalancePatch{
		Cash:   &cash,
		Reason: "testing",
	})
	require.NoError(t, err)

	assert.JSONEq(t, `"Infinity"`, string(body["cash"]))
	assert.JSONEq(t, `"testing"`, string(body["reason"]))
	assert.NotContains(t, body, "bank")

	assert.Equal(t, Unlimited, u.Cash)
	assert.Equal(t, Finite(200), u.Bank)
	assert.Nil(t, u.Rank)
}

// TestSetBalance verifies the PUT method and absolute amounts.
func TestSetBalance(t *testing.T) {
	var body map[string]json.RawMessage

	user := setupUser(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))

		fmt.Fprint(w, `{"user_id": "20", "cash": 0, "bank": 500, "total": 500}`)
	})

	cash, bank := Finite(0), Finite(500)
	u, err := user.SetBalance(context.Background(), BalancePatch{Cash: &cash, Bank: &bank})
	require.NoError(t, err)

	assert.JSONEq(t, `0`, string(body["cash"]))
	assert.JSONEq(t, `500`, string(body["bank"]))
	assert.NotContains(t, body, "reason")
	assert.Equal(t, Finite(500), u.Total)
}

// TestItemQuantity verifies the held-quantity read.
func TestItemQuantity(t *testing.T) {
	user := setupUser(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/guilds/10/users/20/inventory/55", r.URL.Path)
		fmt.Fprint(w, `{"item_id": "55", "quantity": 3}`)
	})

	quantity, err := user.ItemQuantity(context.Background(), 55)
	require.NoError(t, err)
	assert.Equal(t, int64(3), quantity)
}

// TestItemQuantity_UnknownItem verifies that the "Unknown item" 404 means
// zero held rather than an error, while any other 404 still fails.
func TestItemQuantity_UnknownItem(t *testing.T) {
	user := setupUser(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Unknown item"}`)
	})

	quantity, err := user.ItemQuantity(context.Background(), 55)
	require.NoError(t, err)
	assert.Equal(t, int64(0), quantity)

	user = setupUser(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Unknown User"}`)
	})

	_, err = user.ItemQuantity(context.Background(), 55)
	assert.True(t, IsNotFound(err))
}

// TestAddItem verifies the POST body shape: item_id as a string, quantity
// clamped to at least 1, and options only when an origin is given.
func TestAddItem(t *testing.T) {
	var body map[string]json.RawMessage

	user := setupUser(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/guilds/10/users/20/inventory", r.URL.Path)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))

		fmt.Fprint(w, `{"item_id": "55", "name": "Fishing Rod", "quantity": 2}`)
	})

	it, err := user.AddItem(context.Background(), 55, 0, nil)
	require.NoError(t, err)

	assert.JSONEq(t, `"55"`, string(body["item_id"]))
	assert.JSONEq(t, `1`, string(body["quantity"]))
	assert.NotContains(t, body, "options")

	assert.Equal(t, int64(55), it.ID)
	assert.Equal(t, "Fishing Rod", it.Name)
	require.NotNil(t, it.Quantity)
	assert.Equal(t, int64(2), *it.Quantity)
}

// TestAddItem_OriginInventory verifies the options payload when copying a
// discontinued item from another user's inventory.
func TestAddItem_OriginInventory(t *testing.T) {
	var body map[string]json.RawMessage

	user := setupUser(t, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))

		fmt.Fprint(w, `{"item_id": "55", "quantity": 3}`)
	})

	_, err := user.AddItem(context.Background(), 55, 3, &AddItemOptions{
		OriginInventoryUser: "292653654",
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"inventory_user_id": 292653654}`, string(body["options"]))
	assert.JSONEq(t, `3`, string(body["quantity"]))
}

// TestRemoveItem verifies the DELETE request and quantity query parameter.
func TestRemoveItem(t *testing.T) {
	user := setupUser(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/guilds/10/users/20/inventory/55", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("quantity"))
		fmt.Fprint(w, `{}`)
	})

	require.NoError(t, user.RemoveItem(context.Background(), 55, 2))
}

// TestInventory verifies the inventory listing decodes item_id-keyed
// entries with quantities.
func TestInventory(t *testing.T) {
	user := setupUser(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/guilds/10/users/20/inventory", r.URL.Path)
		assert.Equal(t, "item_id", r.URL.Query().Get("sort"))

		fmt.Fprint(w, `{
			"items": [
				{"item_id": "55", "name": "Fishing Rod", "quantity": 3},
				{"item_id": "56", "name": "Bait", "quantity": "12"}
			],
			"page": 1,
			"total_pages": 1
		}`)
	})

	items, err := Collect(user.Inventory(context.Background(), "", 0))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, int64(55), items[0].ID)
	require.NotNil(t, items[0].Quantity)
	assert.Equal(t, int64(3), *items[0].Quantity)

	assert.Equal(t, int64(56), items[1].ID)
	require.NotNil(t, items[1].Quantity)
	assert.Equal(t, int64(12), *items[1].Quantity)
}
