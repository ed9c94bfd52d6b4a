package unb

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
)

// leaderboardBaseURL is the public (non-API) leaderboard page.
const leaderboardBaseURL = "https://unbelievaboat.com/leaderboard"

// guildIconBaseURL is the Discord CDN base for guild icons.
const guildIconBaseURL = "https://cdn.discordapp.com/icons"

// Leaderboard sort orders.
type LeaderboardSort string

const (
	LeaderboardSortCash  LeaderboardSort = "cash"
	LeaderboardSortBank  LeaderboardSort = "bank"
	LeaderboardSortTotal LeaderboardSort = "total"
)

// Item-store sort orders.
type ItemSort string

const (
	ItemSortID             ItemSort = "id"
	ItemSortPrice          ItemSort = "price"
	ItemSortName           ItemSort = "name"
	ItemSortStockRemaining ItemSort = "stock_remaining"
	ItemSortExpiresAt      ItemSort = "expires_at"
)

// GuildPermissions are the capabilities the application has in a guild,
// decoded from the API's permission bitfield.
type GuildPermissions struct {
	// Economy allows reading and changing balances (bit 0).
	Economy bool

	// Items allows managing the item store and inventories (bit 1).
	Items bool

	// Bitwise is the raw bitfield as reported by the API.
	Bitwise int64
}

// newGuildPermissions decodes the permission bitfield.
func newGuildPermissions(bitwise int64) GuildPermissions {
	return GuildPermissions{
		Economy: bitwise&(1<<0) != 0,
		Items:   bitwise&(1<<1) != 0,
		Bitwise: bitwise,
	}
}

// PartialGuild is a caller-constructed guild reference: an ID bound to an
// Application, with no metadata. It is enough to perform any guild-scoped
// operation without fetching the guild first.
type PartialGuild struct {
	// ID is the guild's numeric ID.
	ID int64

	app *Application
}

// LeaderboardURL returns the public leaderboard page for the guild.
func (g *PartialGuild) LeaderboardURL() string {
	return fmt.Sprintf("%s/%d", leaderboardBaseURL, g.ID)
}

// FetchPermissions fetches the permissions the application has in the guild.
func (g *PartialGuild) FetchPermissions(ctx context.Context) (GuildPermissions, error) {
	var payload struct {
		Permissions flexInt `json:"permissions"`
	}

	path := fmt.Sprintf("/applications/@me/guilds/%d", g.ID)
	if err := g.app.getJSON(ctx, path, &payload); err != nil {
		return GuildPermissions{}, err
	}

	return newGuildPermissions(int64(payload.Permissions)), nil
}

// GetUser builds a user reference scoped to the guild without querying the
// API. Useful when changing a balance or inventory without needing the
// current state.
func (g *PartialGuild) GetUser(user any) (*PartialUser, error) {
	id, err := ResolveID(user)
	if err != nil {
		return nil, err
	}

	return &PartialUser{ID: id, guild: g}, nil
}

// FetchUser fetches the user's balance and leaderboard rank.
func (g *PartialGuild) FetchUser(ctx context.Context, user any) (*User, error) {
	id, err := ResolveID(user)
	if err != nil {
		return nil, err
	}

	var payload userPayload

	path := fmt.Sprintf("/guilds/%d/users/%d", g.ID, id)
	if err := g.app.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}

	return newUser(g, id, payload), nil
}

// Leaderboard lazily iterates the guild's leaderboard from highest to
// lowest. Each range opens a fresh iteration; pages are requested one at a
// time as the caller advances. An empty sort defaults to total; limit <= 0
// yields every user.
//
//	for user, err := range guild.Leaderboard(ctx, unb.LeaderboardSortTotal, 0) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(user.ID, user.Total)
//	}
func (g *PartialGuild) Leaderboard(ctx context.Context, sort LeaderboardSort, limit int) iter.Seq2[*User, error] {
	if sort == "" {
		sort = LeaderboardSortTotal
	}

	path := fmt.Sprintf("/guilds/%d/users", g.ID)

	return fetchPages(ctx, g.app.client, path, "users", string(sort), limit,
		func(raw json.RawMessage) (*User, error) {
			var payload userPayload
			if err := json.Unmarshal(raw, &payload); err != nil {
				return nil, fmt.Errorf("%w: decoding leaderboard entry: %v", ErrParse, err)
			}

			return newUser(g, int64(payload.UserID), payload), nil
		})
}

// StoreItems lazily iterates the guild's item store. An empty sort defaults
// to id; limit <= 0 yields every item.
func (g *PartialGuild) StoreItems(ctx context.Context, sort ItemSort, limit int) iter.Seq2[*Item, error] {
	if sort == "" {
		sort = ItemSortID
	}

	path := fmt.Sprintf("/guilds/%d/items", g.ID)

	return fetchPages(ctx, g.app.client, path, "items", string(sort), limit,
		func(raw json.RawMessage) (*Item, error) {
			return decodeItem(g, raw)
		})
}

// FetchItem fetches a single store item.
func (g *PartialGuild) FetchItem(ctx context.Context, item any) (*Item, error) {
	id, err := ResolveID(item)
	if err != nil {
		return nil, err
	}

	resp, err := g.app.client.Get(ctx, fmt.Sprintf("/guilds/%d/items/%d", g.ID, id), nil)
	if err != nil {
		return nil, err
	}

	if err := mapStatus(resp.StatusCode, resp.Body); err != nil {
		return nil, err
	}

	it, err := decodeItem(g, resp.Body)
	if err != nil {
		return nil, err
	}

	it.ID = id

	return it, nil
}

// Guild is a guild enriched with metadata from the API. Metadata is fetched
// once and never auto-refreshed.
type Guild struct {
	PartialGuild

	// Name is the guild's display name.
	Name string

	// Icon is the raw icon identifier, empty when the guild has no icon.
	// Animated icons carry the "a_" prefix.
	Icon string

	// MemberCount is the guild's member count.
	MemberCount int

	// Owner is a reference to the guild's owner.
	Owner *PartialUser

	// Symbol is the guild's currency symbol.
	Symbol string

	// Premium reports whether the guild has UnbelievaBoat premium.
	Premium bool

	// VanityCode is the guild's vanity leaderboard code, if set.
	VanityCode string
}

// guildPayload is the wire shape of a guild response.
type guildPayload struct {
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	MemberCount flexInt `json:"member_count"`
	OwnerID     flexID  `json:"owner_id"`
	Symbol      string  `json:"symbol"`
	Premium     bool    `json:"premium"`
	VanityCode  string  `json:"vanity_code"`
}

// newGuild builds a Guild from a server response.
func newGuild(app *Application, id int64, payload guildPayload) *Guild {
	g := &Guild{
		PartialGuild: PartialGuild{ID: id, app: app},
		Name:         payload.Name,
		Icon:         payload.Icon,
		MemberCount:  int(payload.MemberCount),
		Symbol:       payload.Symbol,
		Premium:      payload.Premium,
		VanityCode:   payload.VanityCode,
	}
	g.Owner = &PartialUser{ID: int64(payload.OwnerID), guild: &g.PartialGuild}

	return g
}

// IconURL returns the CDN URL of the guild's icon, or "" when the guild has
// none. Animated icons ("a_" prefix) resolve to a .gif, others to a .png.
func (g *Guild) IconURL() string {
	if g.Icon == "" {
		return ""
	}

	ext := ".png"
	if strings.HasPrefix(g.Icon, "a_") {
		ext = ".gif"
	}

	return fmt.Sprintf("%s/%d/%s%s", guildIconBaseURL, g.ID, g.Icon, ext)
}

// LeaderboardURL returns the public leaderboard page, preferring the vanity
// code over the numeric URL when the guild has one.
func (g *Guild) LeaderboardURL() string {
	if g.VanityCode != "" {
		return fmt.Sprintf("%s/%s", leaderboardBaseURL, g.VanityCode)
	}

	return g.PartialGuild.LeaderboardURL()
}
