package router

import (
	"civichub/internal/handler"
	"civichub/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	User      *handler.UserHandler
	Email     *handler.EmailHandler
	Community *handler.CommunityHandler
	Post      *handler.PostHandler
	Incident  *handler.IncidentHandler
}

func InitRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/:scope/code", h.Email.SendCode)
	}

	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", h.User.Register)
		userGroup.POST("/login", h.User.Login)
		userGroup.POST("/reset", h.User.ResetPassword)
	}

	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", h.User.TokenRefresh)
	}

	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/logout", h.User.Logout)
		authGroup.POST("/change-password", h.User.ChangePassword)
	}

	// 社区与成员生命周期
	communityGroup := r.Group("/api/community")
	communityGroup.Use(middleware.AuthMiddleware())
	{
		communityGroup.POST("/create", h.Community.Create)
		communityGroup.GET("/list", h.Community.List)
		communityGroup.GET("/nearby", h.Community.Nearby)
		communityGroup.GET("/:id", h.Community.Get)
		communityGroup.GET("/:id/members", h.Community.Members)
		communityGroup.POST("/:id/join", h.Community.Join)
		communityGroup.POST("/:id/leave", h.Community.Leave)
		communityGroup.DELETE("/:id/members/:userId", h.Community.RemoveMember)
		communityGroup.POST("/:id/members/:memberId/promote", h.Community.Promote)
		communityGroup.POST("/:id/members/:memberId/demote", h.Community.Demote)
	}

	postGroup := r.Group("/api/post")
	postGroup.Use(middleware.AuthMiddleware())
	{
		postGroup.POST("/create", h.Post.Create)
		postGroup.DELETE("/:id", h.Post.Delete)
		postGroup.GET("/list/:id", h.Post.ListByCommunity)
		postGroup.POST("/:id/like", h.Post.Like)
		postGroup.POST("/:id/unlike", h.Post.Unlike)
		postGroup.GET("/:id/likes", h.Post.LikeCount)
	}

	incidentGroup := r.Group("/api/incident")
	incidentGroup.Use(middleware.AuthMiddleware())
	{
		incidentGroup.POST("/report", h.Incident.Report)
		incidentGroup.GET("/list/:id", h.Incident.ListByCommunity)
		incidentGroup.POST("/:id/resolve", h.Incident.Resolve)
		incidentGroup.DELETE("/:id", h.Incident.Delete)
	}

	return r
}
