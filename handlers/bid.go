package handlers

import (
	"errors"
	"net/http"

	"helpr/services/bid"
	"helpr/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BidHandler struct {
	BidService bid.BidService
}

func NewBidHandler(bidService bid.BidService) *BidHandler {
	return &BidHandler{BidService: bidService}
}

// PlaceBid handles POST /api/services/:id/bids. Placing again replaces the
// provider's previous offer.
func (h *BidHandler) PlaceBid(c *gin.Context) {
	providerID, ok := requireActorID(c, "providerID")
	if !ok {
		return
	}

	var body struct {
		BidAmount float64 `json:"bidAmount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	fr, err := h.BidService.PlaceBid(c.Request.Context(), c.Param("id"), providerID, body.BidAmount)
	if err != nil {
		respondBidError(c, err, "place bid")
		return
	}
	c.JSON(http.StatusCreated, fr)
}

// WithdrawBid handles DELETE /api/services/:id/bids. Withdrawing an offer
// that is already gone still succeeds.
func (h *BidHandler) WithdrawBid(c *gin.Context) {
	providerID, ok := requireActorID(c, "providerID")
	if !ok {
		return
	}

	if err := h.BidService.WithdrawBid(c.Request.Context(), c.Param("id"), providerID); err != nil {
		respondBidError(c, err, "withdraw bid")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Offer withdrawn"})
}

// AcceptBid handles POST /api/services/:id/accept.
func (h *BidHandler) AcceptBid(c *gin.Context) {
	userID, ok := requireActorID(c, "userID")
	if !ok {
		return
	}

	var body struct {
		ProviderID string `json:"providerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	svc, err := h.BidService.AcceptBid(c.Request.Context(), c.Param("id"), userID, body.ProviderID)
	if err != nil {
		respondBidError(c, err, "accept bid")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// ListServiceBids handles GET /api/services/:id/bids for the request owner.
func (h *BidHandler) ListServiceBids(c *gin.Context) {
	userID, ok := requireActorID(c, "userID")
	if !ok {
		return
	}

	bids, err := h.BidService.ListByService(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondBidError(c, err, "list bids")
		return
	}
	c.JSON(http.StatusOK, bids)
}

// ListMyBids handles GET /api/bids/mine for providers.
func (h *BidHandler) ListMyBids(c *gin.Context) {
	providerID, ok := requireActorID(c, "providerID")
	if !ok {
		return
	}

	bids, err := h.BidService.ListByProvider(c.Request.Context(), providerID)
	if err != nil {
		respondBidError(c, err, "list bids")
		return
	}
	c.JSON(http.StatusOK, bids)
}

func respondBidError(c *gin.Context, err error, op string) {
	switch {
	case bid.IsInvalidAmount(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case bid.IsServiceNotOpen(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case bid.IsBidNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, bid.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "service request belongs to another customer"})
	default:
		utils.GetLogger().Error("bid operation failed", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + op})
	}
}
