package handler

import (
	"net/http"
	"strconv"
	"time"

	"civichub/internal/service"

	"github.com/gin-gonic/gin"
)

type IncidentHandler struct {
	svc *service.IncidentService
}

func NewIncidentHandler(svc *service.IncidentService) *IncidentHandler {
	return &IncidentHandler{svc: svc}
}

func (h *IncidentHandler) Report(c *gin.Context) {
	userID := currentUserID(c)

	var req service.ReportIncidentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	inc, err := h.svc.Report(c.Request.Context(), userID, req)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, inc)
}

func (h *IncidentHandler) ListByCommunity(c *gin.Context) {
	communityID, ok := paramUint64(c, "id")
	if !ok {
		return
	}
	lastID, _ := strconv.ParseUint(c.Query("last_id"), 10, 64)
	lastTS, _ := strconv.ParseInt(c.Query("last_ts"), 10, 64)
	size, _ := strconv.Atoi(c.Query("size"))

	var lastCreatedAt time.Time
	if lastTS > 0 {
		lastCreatedAt = time.Unix(lastTS, 0)
	}

	list, nextID, nextTS, err := h.svc.ListByCommunity(c.Request.Context(), communityID, lastID, lastCreatedAt, size)
	if err != nil {
		writeErr(c, err)
		return
	}
	var ts int64
	if !nextTS.IsZero() {
		ts = nextTS.Unix()
	}
	c.JSON(http.StatusOK, gin.H{"list": list, "next_last_id": nextID, "next_last_ts": ts})
}

func (h *IncidentHandler) Resolve(c *gin.Context) {
	userID := currentUserID(c)
	incidentID, ok := paramUint64(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Resolve(c.Request.Context(), userID, incidentID); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *IncidentHandler) Delete(c *gin.Context) {
	userID := currentUserID(c)
	incidentID, ok := paramUint64(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, incidentID); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
