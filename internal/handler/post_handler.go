package handler

import (
	"net/http"
	"strconv"
	"time"

	"civichub/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc   *service.PostService
	likes *service.PostLikeService
}

type PostCreateReq struct {
	CommunityID uint64 `json:"community_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
}

func NewPostHandler(svc *service.PostService, likes *service.PostLikeService) *PostHandler {
	return &PostHandler{svc: svc, likes: likes}
}

func (h *PostHandler) Create(c *gin.Context) {
	userID := currentUserID(c)

	var req PostCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), userID, req.CommunityID, req.Title, req.Content)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListByCommunity 游标分页：?last_id=&last_ts=（unix 秒）
func (h *PostHandler) ListByCommunity(c *gin.Context) {
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

func (h *PostHandler) Delete(c *gin.Context) {
	userID := currentUserID(c)
	postID, ok := paramUint64(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeletePost(c.Request.Context(), userID, postID); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *PostHandler) Like(c *gin.Context) {
	userID := currentUserID(c)
	postID, ok := paramUint64(c, "id")
	if !ok {
		return
	}

	changed, err := h.likes.Like(c.Request.Context(), userID, postID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok", "changed": changed})
}

func (h *PostHandler) Unlike(c *gin.Context) {
	userID := currentUserID(c)
	postID, ok := paramUint64(c, "id")
	if !ok {
		return
	}

	changed, err := h.likes.Unlike(c.Request.Context(), userID, postID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok", "changed": changed})
}

func (h *PostHandler) LikeCount(c *gin.Context) {
	postID, ok := paramUint64(c, "id")
	if !ok {
		return
	}

	cnt, err := h.likes.GetLikeCount(c.Request.Context(), postID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": cnt})
}
