package unb

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jsamuelsen/unbelievaboat-go/internal/rest"
)

// Inventory sort orders.
type InventorySort string

const (
	InventorySortItemID   InventorySort = "item_id"
	InventorySortName     InventorySort = "name"
	InventorySortQuantity InventorySort = "quantity"
)

// unknownItemMessage marks the 404 that means "the user simply doesn't have
// the item", which ItemQuantity reports as zero rather than an error.
const unknownItemMessage = "Unknown item"

// PartialUser is a caller-constructed user reference scoped to a guild. It
// carries no balance metadata but supports every user-scoped operation.
type PartialUser struct {
	// ID is the user's numeric ID.
	ID int64

	guild *PartialGuild
}

// Guild returns the guild scope of the user.
func (u *PartialUser) Guild() *PartialGuild {
	return u.guild
}

// BalancePatch describes a balance change. A nil field is left out of the
// request and therefore untouched. Use Unlimited to set a balance to the
// API's infinite sentinel.
type BalancePatch struct {
	// Cash is the cash delta (UpdateBalance) or absolute value (SetBalance).
	Cash *Amount

	// Bank is the bank delta (UpdateBalance) or absolute value (SetBalance).
	Bank *Amount

	// Reason appears in the guild's economy logs.
	Reason string
}

// body builds the wire payload. Unlimited amounts serialize as the
// "Infinity" literal via Amount's MarshalJSON.
func (p BalancePatch) body() map[string]any {
	body := make(map[string]any)

	if p.Cash != nil {
		body["cash"] = *p.Cash
	}
	if p.Bank != nil {
		body["bank"] = *p.Bank
	}
	if p.Reason != "" {
		body["reason"] = p.Reason
	}

	return body
}

// UpdateBalance changes the user's balance by the given amounts; negative
// amounts remove money. The returned User has no Rank: the single-user
// endpoint never includes one.
func (u *PartialUser) UpdateBalance(ctx context.Context, patch BalancePatch) (*User, error) {
	return u.writeBalance(ctx, http.MethodPatch, patch)
}

// SetBalance sets the user's balance to the given absolute amounts. The
// returned User has no Rank.
func (u *PartialUser) SetBalance(ctx context.Context, patch BalancePatch) (*User, error) {
	return u.writeBalance(ctx, http.MethodPut, patch)
}

func (u *PartialUser) writeBalance(ctx context.Context, method string, patch BalancePatch) (*User, error) {
	path := fmt.Sprintf("/guilds/%d/users/%d", u.guild.ID, u.ID)

	var (
		resp *rest.Response
		err  error
	)

	switch method {
	case http.MethodPatch:
		resp, err = u.guild.app.client.Patch(ctx, path, patch.body())
	default:
		resp, err = u.guild.app.client.Put(ctx, path, patch.body())
	}
	if err != nil {
		return nil, err
	}

	if err := mapStatus(resp.StatusCode, resp.Body); err != nil {
		return nil, err
	}

	var payload userPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding balance response: %v", ErrParse, err)
	}

	return newUser(u.guild, u.ID, payload), nil
}

// Inventory lazily iterates the user's inventory. An empty sort defaults to
// item_id; limit <= 0 yields every item.
func (u *PartialUser) Inventory(ctx context.Context, sort InventorySort, limit int) iter.Seq2[*Item, error] {
	if sort == "" {
		sort = InventorySortItemID
	}

	path := fmt.Sprintf("/guilds/%d/users/%d/inventory", u.guild.ID, u.ID)

	return fetchPages(ctx, u.guild.app.client, path, "items", string(sort), limit,
		func(raw json.RawMessage) (*Item, error) {
			return decodeItem(u.guild, raw)
		})
}

// ItemQuantity returns how many of the item the user holds. A 404 whose
// message is "Unknown item" means the user has none and returns 0 with no
// error; any other failure is mapped as usual.
func (u *PartialUser) ItemQuantity(ctx context.Context, item any) (int64, error) {
	id, err := ResolveID(item)
	if err != nil {
		return 0, err
	}

	path := fmt.Sprintf("/guilds/%d/users/%d/inventory/%d", u.guild.ID, u.ID, id)

	resp, err := u.guild.app.client.Get(ctx, path, nil)
	if err != nil {
		return 0, err
	}

	if resp.StatusCode == http.StatusNotFound && wireMessage(resp.Body) == unknownItemMessage {
		return 0, nil
	}

	if err := mapStatus(resp.StatusCode, resp.Body); err != nil {
		return 0, err
	}

	var payload struct {
		Quantity flexInt `json:"quantity"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return 0, fmt.Errorf("%w: decoding quantity: %v", ErrParse, err)
	}

	return int64(payload.Quantity), nil
}

// AddItemOptions are optional parameters for AddItem.
type AddItemOptions struct {
	// OriginInventoryUser identifies an inventory to copy the item from
	// when it is no longer for sale. Accepts the same shapes as ResolveID.
	OriginInventoryUser any
}

// AddItem adds an item to the user's inventory and returns the resulting
// inventory entry. A quantity below 1 is treated as 1.
func (u *PartialUser) AddItem(ctx context.Context, item any, quantity int64, opts *AddItemOptions) (*Item, error) {
	id, err := ResolveID(item)
	if err != nil {
		return nil, err
	}

	if quantity < 1 {
		quantity = 1
	}

	// The API expects item_id as a string.
	body := map[string]any{
		"item_id":  strconv.FormatInt(id, 10),
		"quantity": quantity,
	}

	if opts != nil && opts.OriginInventoryUser != nil {
		origin, err := ResolveID(opts.OriginInventoryUser)
		if err != nil {
			return nil, err
		}
		body["options"] = map[string]any{"inventory_user_id": origin}
	}

	path := fmt.Sprintf("/guilds/%d/users/%d/inventory", u.guild.ID, u.ID)

	resp, err := u.guild.app.client.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	if err := mapStatus(resp.StatusCode, resp.Body); err != nil {
		return nil, err
	}

	it, err := decodeItem(u.guild, resp.Body)
	if err != nil {
		return nil, err
	}

	it.ID = id

	return it, nil
}

// RemoveItem removes up to quantity of the item from the user's inventory.
// A quantity below 1 is treated as 1.
func (u *PartialUser) RemoveItem(ctx context.Context, item any, quantity int64) error {
	id, err := ResolveID(item)
	if err != nil {
		return err
	}

	if quantity < 1 {
		quantity = 1
	}

	path := fmt.Sprintf("/guilds/%d/users/%d/inventory/%d", u.guild.ID, u.ID, id)
	query := url.Values{"quantity": {strconv.FormatInt(quantity, 10)}}

	resp, err := u.guild.app.client.Delete(ctx, path, query)
	if err != nil {
		return err
	}

	return mapStatus(resp.StatusCode, resp.Body)
}

// User is a user enriched with balance metadata from the API.
type User struct {
	PartialUser

	// Rank is the user's leaderboard position. It is nil outside
	// leaderboard listings; the single-user endpoints never include it.
	Rank *int

	// Cash is the user's cash balance.
	Cash Amount

	// Bank is the user's bank balance.
	Bank Amount

	// Total is the user's total balance.
	Total Amount
}

// userPayload is the wire shape of a user balance response.
type userPayload struct {
	UserID flexID   `json:"user_id"`
	Rank   *flexInt `json:"rank"`
	Cash   Amount   `json:"cash"`
	Bank   Amount   `json:"bank"`
	Total  Amount   `json:"total"`
}

// newUser builds a User from a server response.
func newUser(guild *PartialGuild, id int64, payload userPayload) *User {
	u := &User{
		PartialUser: PartialUser{ID: id, guild: guild},
		Cash:        payload.Cash,
		Bank:        payload.Bank,
		Total:       payload.Total,
	}

	if payload.Rank != nil {
		rank := int(*payload.Rank)
		u.Rank = &rank
	}

	return u
}
