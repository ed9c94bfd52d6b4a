package unbtest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	unb "github.com/jsamuelsen/unbelievaboat-go"
)

// balanceBody is the PATCH/PUT request body. Amounts decode the "Infinity"
// literal through the real unb.Amount unmarshaler; gin's binding runs the
// validator tags.
type balanceBody struct {
	Cash   *unb.Amount `json:"cash"`
	Bank   *unb.Amount `json:"bank"`
	Reason string      `json:"reason" binding:"omitempty,max=500"`
}

// addAmounts sums two amounts; unlimited absorbs everything.
func addAmounts(a, b unb.Amount) unb.Amount {
	if a.IsUnlimited() || b.IsUnlimited() {
		return unb.Unlimited
	}

	return unb.Finite(a.Int64() + b.Int64())
}

// patchBalance applies a delta update.
func (s *Server) patchBalance(c *gin.Context) {
	s.writeBalance(c, func(current, patch unb.Amount) unb.Amount {
		return addAmounts(current, patch)
	})
}

// putBalance applies an absolute set.
func (s *Server) putBalance(c *gin.Context) {
	s.writeBalance(c, func(_, patch unb.Amount) unb.Amount {
		return patch
	})
}

func (s *Server) writeBalance(c *gin.Context, apply func(current, patch unb.Amount) unb.Amount) {
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

	var body balanceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if body.Cash != nil {
		b.Cash = apply(b.Cash, *body.Cash)
	}
	if body.Bank != nil {
		b.Bank = apply(b.Bank, *body.Bank)
	}

	// Balance writes never report a rank.
	c.JSON(http.StatusOK, userPayload(id, b, 0))
}
