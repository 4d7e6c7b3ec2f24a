package handler

import (
	"net/http"
	"strconv"

	"civichub/internal/service"

	"github.com/gin-gonic/gin"
)

// CommunityHandler 社区与成员生命周期的六个入口
type CommunityHandler struct {
	membership *service.MembershipService
	svc        *service.CommunityService
}

type CommunityCreateReq struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	LocationID  uint64                 `json:"location_id"`
	Location    *service.LocationInput `json:"location"`
}

func NewCommunityHandler(membership *service.MembershipService, svc *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{membership: membership, svc: svc}
}

func (h *CommunityHandler) Create(c *gin.Context) {
	userID := currentUserID(c)

	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	view, err := h.membership.CreateCommunity(c.Request.Context(), userID, service.CreateCommunityInput{
		Name:        req.Name,
		Description: req.Description,
		LocationID:  req.LocationID,
		Location:    req.Location,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CommunityHandler) Join(c *gin.Context) {
	userID := currentUserID(c)
	communityID, ok := paramUint64(c, "id")
	if !ok {
		return
	}

	view, err := h.membership.Join(c.Request.Context(), communityID, userID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	userID := currentUserID(c)
	communityID, ok := paramUint64(c, "id")
	if !ok {
		return
	}

	res, err := h.membership.Leave(c.Request.Context(), communityID, userID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok", "community_deleted": res.CommunityDeleted})
}

func (h *CommunityHandler) RemoveMember(c *gin.Context) {
	userID := currentUserID(c)
	communityID, ok := paramUint64(c, "id")
	if !ok {
		return
	}
	targetUserID, ok := paramUint64(c, "userId")
	if !ok {
		return
	}

	res, err := h.membership.RemoveMember(c.Request.Context(), communityID, userID, targetUserID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok", "community_deleted": res.CommunityDeleted})
}

func (h *CommunityHandler) Promote(c *gin.Context) {
	userID := currentUserID(c)
	communityID, ok := paramUint64(c, "id")
	if !ok {
		return
	}
	memberID, ok := paramUint64(c, "memberId")
	if !ok {
		return
	}

	if err := h.membership.Promote(c.Request.Context(), communityID, userID, memberID); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) Demote(c *gin.Context) {
	userID := currentUserID(c)
	communityID, ok := paramUint64(c, "id")
	if !ok {
		return
	}
	memberID, ok := paramUint64(c, "memberId")
	if !ok {
		return
	}

	if err := h.membership.Demote(c.Request.Context(), communityID, userID, memberID); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) Get(c *gin.Context) {
	userID := currentUserID(c)
	communityID, ok := paramUint64(c, "id")
	if !ok {
		return
	}

	view, err := h.svc.Get(c.Request.Context(), communityID, userID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CommunityHandler) Members(c *gin.Context) {
	communityID, ok := paramUint64(c, "id")
	if !ok {
		return
	}

	list, err := h.membership.ListMembers(c.Request.Context(), communityID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.List(c.Request.Context(), page, size)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) Nearby(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "lat and lng required"})
		return
	}
	radius, _ := strconv.ParseFloat(c.Query("radius_km"), 64)

	list, err := h.svc.Nearby(c.Request.Context(), lat, lng, radius)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
