package unbtest

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
)

// inventoryPayload is the wire shape of an inventory entry: the item's
// store metadata keyed by "item_id" plus the held quantity. Items deleted
// from the store keep a minimal entry.
func inventoryPayload(g *Guild, id, quantity int64) gin.H {
	payload := gin.H{
		"item_id":  strconv.FormatInt(id, 10),
		"quantity": quantity,
	}

	if it := storeItem(g, id); it != nil {
		payload["name"] = it.Name
		payload["price"] = strconv.FormatInt(it.Price, 10)
		payload["description"] = it.Description
		payload["is_usable"] = it.Usable
		payload["is_sellable"] = it.Sellable
		if it.EmojiUnicode != "" {
			payload["unicode"] = it.EmojiUnicode
		}
	}

	return payload
}

func (s *Server) listInventory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guild(c)
	if g == nil {
		return
	}

	id, b := s.user(c, g)
	if b == nil {
		return
	}

	p := parsePageParams(c, "item_id")

	type entry struct {
		itemID   int64
		quantity int64
	}

	entries := make([]entry, 0, len(g.Inventories[id]))
	for itemID, quantity := range g.Inventories[id] {
		entries = append(entries, entry{itemID: itemID, quantity: quantity})
	}

	sort.Slice(entries, func(i, j int) bool {
		switch p.sort {
		case "name":
			return itemName(g, entries[i].itemID) < itemName(g, entries[j].itemID)
		case "quantity":
			return entries[i].quantity < entries[j].quantity
		default:
			return entries[i].itemID < entries[j].itemID
		}
	})

	start, end, totalPages := p.paginate(len(entries))

	items := make([]gin.H, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, inventoryPayload(g, entries[i].itemID, entries[i].quantity))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"page":        p.page,
		"total_pages": totalPages,
	})
}

func itemName(g *Guild, id int64) string {
	if it := storeItem(g, id); it != nil {
		return it.Name
	}

	return ""
}

func (s *Server) getInventoryItem(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guild(c)
	if g == nil {
		return
	}

	id, b := s.user(c, g)
	if b == nil {
		return
	}

	itemID, _ := strconv.ParseInt(c.Param("item"), 10, 64)

	quantity, ok := g.Inventories[id][itemID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Unknown item"})
		return
	}

	c.JSON(http.StatusOK, inventoryPayload(g, itemID, quantity))
}

// addItemBody is the POST inventory request body. item_id arrives as a
// string, matching the real API.
type addItemBody struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int64  `json:"quantity"`
	Options  *struct {
		InventoryUserID int64 `json:"inventory_user_id"`
	} `json:"options"`
}

func (s *Server) addInventoryItem(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guild(c)
	if g == nil {
		return
	}

	id, b := s.user(c, g)
	if b == nil {
		return
	}

	var body addItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	itemID, err := strconv.ParseInt(body.ItemID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if body.Quantity < 1 {
		body.Quantity = 1
	}

	// The item must exist in the store, or in the origin inventory when
	// the caller asks to copy a discontinued item from another user.
	known := storeItem(g, itemID) != nil
	if !known && body.Options != nil {
		_, known = g.Inventories[body.Options.InventoryUserID][itemID]
	}
	if !known {
		c.JSON(http.StatusNotFound, gin.H{"message": "Unknown item"})
		return
	}

	if g.Inventories[id] == nil {
		g.Inventories[id] = make(map[int64]int64)
	}
	g.Inventories[id][itemID] += body.Quantity

	c.JSON(http.StatusOK, inventoryPayload(g, itemID, g.Inventories[id][itemID]))
}

func (s *Server) removeInventoryItem(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guild(c)
	if g == nil {
		return
	}

	id, b := s.user(c, g)
	if b == nil {
		return
	}

	itemID, _ := strconv.ParseInt(c.Param("item"), 10, 64)

	held, ok := g.Inventories[id][itemID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Unknown item"})
		return
	}

	quantity := int64(1)
	if raw := c.Query("quantity"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			quantity = n
		}
	}

	if held <= quantity {
		delete(g.Inventories[id], itemID)
	} else {
		g.Inventories[id][itemID] = held - quantity
	}

	c.JSON(http.StatusOK, gin.H{})
}
