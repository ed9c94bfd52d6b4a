package unbtest

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	unb "github.com/jsamuelsen/unbelievaboat-go"
)

// amountLess orders finite amounts numerically with unlimited above all.
func amountLess(a, b unb.Amount) bool {
	if a.IsUnlimited() {
		return false
	}
	if b.IsUnlimited() {
		return true
	}

	return a.Int64() < b.Int64()
}

func (s *Server) listLeaderboard(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guild(c)
	if g == nil {
		return
	}

	p := parsePageParams(c, "total")

	type entry struct {
		id int64
		b  *Balance
	}

	entries := make([]entry, 0, len(g.Users))
	for id, b := range g.Users {
		entries = append(entries, entry{id: id, b: b})
	}

	key := func(e entry) unb.Amount {
		switch p.sort {
		case "cash":
			return e.b.Cash
		case "bank":
			return e.b.Bank
		default:
			return e.b.Total()
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := key(entries[i]), key(entries[j])
		if a == b {
			return entries[i].id < entries[j].id
		}
		return amountLess(b, a)
	})

	start, end, totalPages := p.paginate(len(entries))

	users := make([]gin.H, 0, end-start)
	for i := start; i < end; i++ {
		users = append(users, userPayload(entries[i].id, entries[i].b, i+1))
	}

	c.JSON(http.StatusOK, gin.H{
		"users":       users,
		"page":        p.page,
		"total_pages": totalPages,
	})
}

// itemPayload is the wire shape of a store item.
func itemPayload(it *Item) gin.H {
	payload := gin.H{
		"id":              strconv.FormatInt(it.ID, 10),
		"name":            it.Name,
		"price":           strconv.FormatInt(it.Price, 10),
		"description":     it.Description,
		"is_inventory":    true,
		"is_usable":       it.Usable,
		"is_sellable":     it.Sellable,
		"unlimited_stock": it.UnlimitedStock,
		"requirements":    []gin.H{},
		"actions":         []gin.H{},
	}

	if !it.UnlimitedStock {
		payload["stock_remaining"] = it.StockRemaining
	}
	if it.ExpiresAt != nil {
		payload["expires_at"] = it.ExpiresAt.Format(time.RFC3339)
	}
	if it.EmojiUnicode != "" {
		payload["unicode"] = it.EmojiUnicode
	}

	return payload
}

func (s *Server) listItems(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guild(c)
	if g == nil {
		return
	}

	p := parsePageParams(c, "id")

	items := make([]*Item, len(g.Items))
	copy(items, g.Items)

	sort.Slice(items, func(i, j int) bool {
		switch p.sort {
		case "price":
			return items[i].Price < items[j].Price
		case "name":
			return items[i].Name < items[j].Name
		case "stock_remaining":
			return items[i].StockRemaining < items[j].StockRemaining
		case "expires_at":
			return expiry(items[i]).Before(expiry(items[j]))
		default:
			return items[i].ID < items[j].ID
		}
	})

	start, end, totalPages := p.paginate(len(items))

	page := make([]gin.H, 0, end-start)
	for i := start; i < end; i++ {
		page = append(page, itemPayload(items[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       page,
		"page":        p.page,
		"total_pages": totalPages,
	})
}

// expiry orders items without an expiry after everything else.
func expiry(it *Item) time.Time {
	if it.ExpiresAt == nil {
		return time.Unix(1<<40, 0)
	}

	return *it.ExpiresAt
}

// storeItem finds an item in the guild's store.
func storeItem(g *Guild, id int64) *Item {
	for _, it := range g.Items {
		if it.ID == id {
			return it
		}
	}

	return nil
}

func (s *Server) getItem(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guild(c)
	if g == nil {
		return
	}

	id, _ := strconv.ParseInt(c.Param("item"), 10, 64)

	it := storeItem(g, id)
	if it == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Unknown item"})
		return
	}

	c.JSON(http.StatusOK, itemPayload(it))
}

func (s *Server) deleteItem(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guild(c)
	if g == nil {
		return
	}

	id, _ := strconv.ParseInt(c.Param("item"), 10, 64)

	it := storeItem(g, id)
	if it == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Unknown item"})
		return
	}

	for i, candidate := range g.Items {
		if candidate.ID == id {
			g.Items = append(g.Items[:i], g.Items[i+1:]...)
			break
		}
	}

	if c.Query("cascade_delete") == "true" {
		for _, inventory := range g.Inventories {
			delete(inventory, id)
		}
	}

	c.JSON(http.StatusOK, gin.H{})
}
