// Package unbtest provides an in-memory fake of the UnbelievaBoat API for
// development and integration tests. It speaks the same wire format as the
// real API (string IDs, the "Infinity" balance literal, paginated listings
// with total_pages, and the documented error messages), so the unb client
// can be pointed at it with unb.WithBaseURL.
package unbtest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	unb "github.com/jsamuelsen/unbelievaboat-go"
)

// maxPageSize mirrors the real API's per-page ceiling.
const maxPageSize = 1000

// Guild is a fixture guild with its users, store, and inventories.
type Guild struct {
	ID          int64
	Name        string
	Icon        string
	MemberCount int
	OwnerID     int64
	Symbol      string
	Premium     bool
	VanityCode  string

	// Permissions is the app permission bitfield (bit 0 economy, bit 1 items).
	Permissions int64

	// Users maps user ID to balance.
	Users map[int64]*Balance

	// Items is the guild's store, in insertion order.
	Items []*Item

	// Inventories maps user ID to item ID to held quantity.
	Inventories map[int64]map[int64]int64
}

// Balance is a fixture user balance.
type Balance struct {
	Cash unb.Amount
	Bank unb.Amount
}

// Total is the combined balance; unlimited if either side is.
func (b *Balance) Total() unb.Amount {
	return addAmounts(b.Cash, b.Bank)
}

// Item is a fixture store item.
type Item struct {
	ID             int64
	Name           string
	Price          int64
	Description    string
	Sellable       bool
	Usable         bool
	UnlimitedStock bool
	StockRemaining int64
	ExpiresAt      *time.Time
	EmojiUnicode   string
}

// Server is the fake API server.
type Server struct {
	// URL is the base URL to pass to unb.WithBaseURL.
	URL string

	token string
	srv   *httptest.Server

	mu     sync.Mutex
	guilds map[int64]*Guild

	registry     *prometheus.Registry
	requestTotal *prometheus.CounterVec
}

// NewServer starts a fake API that accepts the given token. Callers must
// Close it when done.
func NewServer(token string) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		token:    token,
		guilds:   make(map[int64]*Guild),
		registry: prometheus.NewRegistry(),
	}

	s.requestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unbtest_requests_total",
		Help: "Requests handled by the fake API, by method and status.",
	}, []string{"method", "status"})
	s.registry.MustRegister(s.requestTotal)

	router := gin.New()
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := router.Group("/", s.countRequests, s.requireToken)
	api.GET("/guilds/:guild", s.getGuild)
	api.GET("/applications/@me/guilds/:guild", s.getPermissions)
	api.GET("/guilds/:guild/users", s.listLeaderboard)
	api.GET("/guilds/:guild/users/:user", s.getUser)
	api.PATCH("/guilds/:guild/users/:user", s.patchBalance)
	api.PUT("/guilds/:guild/users/:user", s.putBalance)
	api.GET("/guilds/:guild/items", s.listItems)
	api.GET("/guilds/:guild/items/:item", s.getItem)
	api.DELETE("/guilds/:guild/items/:item", s.deleteItem)
	api.GET("/guilds/:guild/users/:user/inventory", s.listInventory)
	api.GET("/guilds/:guild/users/:user/inventory/:item", s.getInventoryItem)
	api.POST("/guilds/:guild/users/:user/inventory", s.addInventoryItem)
	api.DELETE("/guilds/:guild/users/:user/inventory/:item", s.removeInventoryItem)

	s.srv = httptest.NewServer(router)
	s.URL = s.srv.URL

	return s
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// AddGuild registers a fixture guild, initializing nil maps.
func (s *Server) AddGuild(g *Guild) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.Users == nil {
		g.Users = make(map[int64]*Balance)
	}
	if g.Inventories == nil {
		g.Inventories = make(map[int64]map[int64]int64)
	}

	s.guilds[g.ID] = g
}

// countRequests records a metric per handled request.
func (s *Server) countRequests(c *gin.Context) {
	c.Next()
	s.requestTotal.WithLabelValues(c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
}

// requireToken enforces the authorization header.
func (s *Server) requireToken(c *gin.Context) {
	if c.GetHeader("authorization") != s.token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
	}
}

// guild resolves the :guild path parameter, writing the API's 404 shape
// when the guild is unknown. Callers must hold s.mu.
func (s *Server) guild(c *gin.Context) *Guild {
	id, err := strconv.ParseInt(c.Param("guild"), 10, 64)
	if err == nil {
		if g, ok := s.guilds[id]; ok {
			return g
		}
	}

	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Unknown Guild"})

	return nil
}

func (s *Server) getGuild(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guild(c)
	if g == nil {
		return
	}

	var icon any
	if g.Icon != "" {
		icon = g.Icon
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           strconv.FormatInt(g.ID, 10),
		"name":         g.Name,
		"icon":         icon,
		"member_count": g.MemberCount,
		"owner_id":     strconv.FormatInt(g.OwnerID, 10),
		"symbol":       g.Symbol,
		"premium":      g.Premium,
		"vanity_code":  g.VanityCode,
	})
}

func (s *Server) getPermissions(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guild(c)
	if g == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{"permissions": g.Permissions})
}

// user resolves the :user path parameter within g.
func (s *Server) user(c *gin.Context, g *Guild) (int64, *Balance) {
	id, err := strconv.ParseInt(c.Param("user"), 10, 64)
	if err == nil {
		if b, ok := g.Users[id]; ok {
			return id, b
		}
	}

	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Unknown User"})

	return 0, nil
}

// userPayload is the wire shape of a user, with an optional rank.
func userPayload(id int64, b *Balance, rank int) gin.H {
	payload := gin.H{
		"user_id": strconv.FormatInt(id, 10),
		"cash":    b.Cash,
		"bank":    b.Bank,
		"total":   b.Total(),
	}
	if rank > 0 {
		payload["rank"] = rank
	}

	return payload
}

func (s *Server) getUser(c *gin.Context) {
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

	// The single-user endpoint never includes a rank.
	c.JSON(http.StatusOK, userPayload(id, b, 0))
}
