package router

import (
	"github.com/gin-gonic/gin"

	"gym_checkin_backend/internal/handlers"
	"gym_checkin_backend/internal/middleware"
	"gym_checkin_backend/pkg/utils"
)

// SetupCheckInRoutes sets up the front-desk check-in routes.
func SetupCheckInRoutes(apiGroup *gin.RouterGroup, h *handlers.CheckInHandler) {
	checkInRoutes := apiGroup.Group("/check-ins")
	{
		checkInRoutes.POST("", h.FrontDeskCheckIn)
		checkInRoutes.POST("/resolve", h.ResolveMember)
		checkInRoutes.GET("/:id", h.GetCheckInByID)
	}
}

// SetupMemberRoutes sets up the public member routes.
func SetupMemberRoutes(apiGroup *gin.RouterGroup, mh *handlers.MemberHandler, ch *handlers.CheckInHandler) {
	memberRoutes := apiGroup.Group("/members")
	{
		memberRoutes.POST("/register", mh.RegisterMember)
		memberRoutes.GET("/:id", mh.GetMemberByID)
		memberRoutes.POST("/:id/check-ins", ch.SubmitCheckIn)
		memberRoutes.GET("/:id/check-ins", ch.GetMemberCheckIns)
		memberRoutes.GET("/:id/card-selection", ch.SelectCard)
	}
}

// SetupTrainerRoutes sets up the public trainer directory.
func SetupTrainerRoutes(apiGroup *gin.RouterGroup, h *handlers.TrainerHandler) {
	apiGroup.GET("/trainers", h.GetTrainers)
}

// SetupAdminRoutes sets up the token-protected card and trainer administration.
func SetupAdminRoutes(apiGroup *gin.RouterGroup, secret []byte, ch *handlers.CardHandler, th *handlers.TrainerHandler) {
	admin := apiGroup.Group("")
	admin.Use(middleware.AuthMiddleware(secret), middleware.RoleAuthMiddleware(utils.RoleAdmin))
	{
		admin.POST("/members/:id/cards", ch.CreateCard)
		admin.GET("/members/:id/cards", ch.GetMemberCards)
		admin.POST("/trainers", th.CreateTrainer)
	}
}
