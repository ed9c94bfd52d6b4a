package unb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ItemRequirementType tags what an item requirement checks.
type ItemRequirementType int

const (
	RequirementRole         ItemRequirementType = 1
	RequirementTotalBalance ItemRequirementType = 2
	RequirementItem         ItemRequirementType = 3
)

// ItemMatchType is how a role or item requirement matches its ID list.
type ItemMatchType int

const (
	MatchAll  ItemMatchType = 1
	MatchAny  ItemMatchType = 2
	MatchNone ItemMatchType = 3
)

// ItemActionType tags what happens when an item is used.
type ItemActionType int

const (
	ActionRespond       ItemActionType = 1
	ActionAddRoles      ItemActionType = 2
	ActionRemoveRoles   ItemActionType = 3
	ActionAddBalance    ItemActionType = 4
	ActionRemoveBalance ItemActionType = 5
	ActionAddItems      ItemActionType = 6
	ActionRemoveItems   ItemActionType = 7
)

// ItemRequirement is a purchase requirement on a store item. The payload
// depends on Type: role and item requirements carry a match mode and target
// IDs, a total-balance requirement carries a threshold.
type ItemRequirement struct {
	// Type is the requirement kind.
	Type ItemRequirementType

	// MatchType is set for role and item requirements only.
	MatchType ItemMatchType

	// IDs are the target role or item IDs. Nil for balance requirements.
	IDs []int64

	// Balance is the threshold for total-balance requirements, nil otherwise.
	Balance *int64
}

// ItemAction is an effect applied when an item is used. The payload depends
// on Type: role and item actions carry IDs, balance actions a delta, and
// respond actions a message.
type ItemAction struct {
	// Type is the action kind.
	Type ItemActionType

	// IDs are the target role or item IDs, when applicable.
	IDs []int64

	// Balance is the balance delta for balance actions, nil otherwise.
	Balance *int64

	// Message is the raw response message for respond actions. The API
	// sends either a plain string or a Discord message object.
	Message json.RawMessage
}

// Emoji is a store item's emoji: either a custom emoji by numeric ID or a
// unicode emoji string.
type Emoji struct {
	// ID is the custom emoji ID, 0 for unicode emojis.
	ID int64

	// Unicode is the unicode emoji, empty for custom emojis.
	Unicode string
}

// Custom reports whether the emoji is a custom (ID-based) emoji.
func (e Emoji) Custom() bool {
	return e.ID != 0
}

// String implements fmt.Stringer.
func (e Emoji) String() string {
	if e.Custom() {
		return strconv.FormatInt(e.ID, 10)
	}

	return e.Unicode
}

// Item is a store item scoped to a guild, or an inventory entry when it
// came from an inventory listing (Quantity is set in that case).
type Item struct {
	// ID is the item's numeric ID.
	ID int64

	// Name is the item's display name.
	Name string

	// Price is the store price, nil when absent.
	Price *int64

	// Description is the item's description, if any.
	Description string

	// Quantity is how many the user holds, set only on inventory entries.
	Quantity *int64

	// InventoryItem reports whether the item goes to the buyer's inventory.
	InventoryItem bool

	// Usable reports whether the item can be used.
	Usable bool

	// Sellable reports whether the item can be sold back.
	Sellable bool

	// StockRemaining is the stock left in the store. Unlimited when the
	// item has unlimited stock, nil when the API omits it.
	StockRemaining *Amount

	// ExpiresAt is when the item leaves the store, nil when it doesn't.
	ExpiresAt *time.Time

	// Emoji is the item's emoji, nil when it has none.
	Emoji *Emoji

	// Requirements are the purchase requirements, in store order.
	Requirements []ItemRequirement

	// Actions are the use effects, in store order.
	Actions []ItemAction

	guild *PartialGuild
}

// Guild returns the guild scope of the item.
func (i *Item) Guild() *PartialGuild {
	return i.guild
}

// Delete removes the item from the guild's store. When includeInventories
// is true it is also removed from every user's inventory; the flag is sent
// as the literal "true"/"false" in the query string.
func (i *Item) Delete(ctx context.Context, includeInventories bool) error {
	path := fmt.Sprintf("/guilds/%d/items/%d", i.guild.ID, i.ID)
	query := url.Values{"cascade_delete": {strconv.FormatBool(includeInventories)}}

	resp, err := i.guild.app.client.Delete(ctx, path, query)
	if err != nil {
		return err
	}

	return mapStatus(resp.StatusCode, resp.Body)
}

// itemPayload is the wire shape of a store item or inventory entry.
// Store payloads key the ID as "id", inventory payloads as "item_id".
type itemPayload struct {
	ID             *flexID              `json:"id"`
	ItemID         *flexID              `json:"item_id"`
	Name           string               `json:"name"`
	Price          *flexInt             `json:"price"`
	Description    string               `json:"description"`
	Quantity       *flexInt             `json:"quantity"`
	IsInventory    *bool                `json:"is_inventory"`
	IsUsable       bool                 `json:"is_usable"`
	IsSellable     bool                 `json:"is_sellable"`
	StockRemaining *Amount              `json:"stock_remaining"`
	UnlimitedStock bool                 `json:"unlimited_stock"`
	ExpiresAt      string               `json:"expires_at"`
	EmojiID        *flexID              `json:"emoji_id"`
	Unicode        string               `json:"unicode"`
	Requirements   []requirementPayload `json:"requirements"`
	Actions        []actionPayload      `json:"actions"`
}

type requirementPayload struct {
	Type      flexInt  `json:"type"`
	MatchType *flexInt `json:"match_type"`
	IDs       []flexID `json:"ids"`
	Balance   *flexInt `json:"balance"`
}

type actionPayload struct {
	Type    flexInt         `json:"type"`
	IDs     []flexID        `json:"ids"`
	Balance *flexInt        `json:"balance"`
	Message json.RawMessage `json:"message"`
}

// decodeItem builds an Item from a raw server payload.
func decodeItem(guild *PartialGuild, raw json.RawMessage) (*Item, error) {
	var payload itemPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding item: %v", ErrParse, err)
	}

	item := &Item{
		Name:        payload.Name,
		Price:       optInt64(payload.Price),
		Description: payload.Description,
		Quantity:    optInt64(payload.Quantity),
		// Absent means the item is an inventory item.
		InventoryItem: payload.IsInventory == nil || *payload.IsInventory,
		Usable:        payload.IsUsable,
		Sellable:      payload.IsSellable,
		guild:         guild,
	}

	switch {
	case payload.ID != nil:
		item.ID = int64(*payload.ID)
	case payload.ItemID != nil:
		item.ID = int64(*payload.ItemID)
	}

	switch {
	case payload.UnlimitedStock:
		stock := Unlimited
		item.StockRemaining = &stock
	case payload.StockRemaining != nil:
		item.StockRemaining = payload.StockRemaining
	}

	if payload.ExpiresAt != "" {
		expires, err := parseWireTime(payload.ExpiresAt)
		if err != nil {
			return nil, err
		}
		item.ExpiresAt = &expires
	}

	switch {
	case payload.EmojiID != nil && *payload.EmojiID != 0:
		item.Emoji = &Emoji{ID: int64(*payload.EmojiID)}
	case payload.Unicode != "":
		item.Emoji = &Emoji{Unicode: payload.Unicode}
	}

	if payload.Requirements != nil {
		item.Requirements = make([]ItemRequirement, len(payload.Requirements))
		for idx, req := range payload.Requirements {
			r := ItemRequirement{
				Type:    ItemRequirementType(req.Type),
				IDs:     idSlice(req.IDs),
				Balance: optInt64(req.Balance),
			}
			if req.MatchType != nil {
				r.MatchType = ItemMatchType(*req.MatchType)
			}
			item.Requirements[idx] = r
		}
	}

	if payload.Actions != nil {
		item.Actions = make([]ItemAction, len(payload.Actions))
		for idx, act := range payload.Actions {
			item.Actions[idx] = ItemAction{
				Type:    ItemActionType(act.Type),
				IDs:     idSlice(act.IDs),
				Balance: optInt64(act.Balance),
				Message: act.Message,
			}
		}
	}

	return item, nil
}
