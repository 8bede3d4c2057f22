package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type PointsHandler struct {
	points PointsServicer
}

func NewPointsHandler(points PointsServicer) *PointsHandler {
	return &PointsHandler{
		points: points,
	}
}

type PointsBalanceResponse struct {
	Balance int64 `json:"balance"`
}

// Balance GET RouteGroup + PointsBalanceRoute. Сумма несгоревших баллов юзера.
func (h *PointsHandler) Balance(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := h.points.Balance(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, &PointsBalanceResponse{Balance: balance})
}

type PointEntryResponse struct {
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	OrderID   *int64    `json:"orderId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// History GET RouteGroup + PointsHistoryRoute. Весь леджер юзера.
func (h *PointsHandler) History(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	entries, err := h.points.History(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	if len(entries) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]PointEntryResponse, len(entries))
	for i, entry := range entries {
		response[i] = PointEntryResponse{
			Amount:    entry.Amount,
			Reason:    entry.Reason,
			OrderID:   entry.OrderID,
			ExpiresAt: entry.ExpiresAt,
			CreatedAt: entry.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, response)
}
