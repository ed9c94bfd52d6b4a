// Package unb is a client for the UnbelievaBoat economy-bot HTTP API:
// per-guild balances, leaderboards, item stores, and inventories.
//
// # Usage
//
// Construct an Application from your token, derive guild and user
// references, and call operations:
//
//	app, err := unb.New(token)
//	if err != nil {
//		return err
//	}
//
//	guild, err := app.GetGuild("903190105455862785")
//	if err != nil {
//		return err
//	}
//
//	user, err := guild.FetchUser(ctx, 228774395874377729)
//	if err != nil {
//		return err
//	}
//	fmt.Println(user.Cash, user.Bank)
//
// # Partial and full entities
//
// GetGuild and GetUser build references without touching the network; they
// are enough for any mutation. FetchGuild, FetchUser, and FetchItem return
// full entities populated from a server response.
//
// # Listings
//
// Leaderboard, StoreItems, and Inventory return lazy sequences. Pages of up
// to 1000 elements are requested one at a time as the caller advances, so
// breaking out of the loop early avoids the remaining requests:
//
//	for user, err := range guild.Leaderboard(ctx, unb.LeaderboardSortTotal, 10) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(user.ID, user.Total)
//	}
//
// # Errors
//
// Failures map to ErrInvalidToken, ErrForbidden, ErrNotFound, or ErrAPI and
// carry the API's message; use errors.Is or the Is* helpers. The client
// issues exactly one HTTP request per operation: no retries, no caching.
package unb

// Version is the client library version.
const Version = "0.1.0"
