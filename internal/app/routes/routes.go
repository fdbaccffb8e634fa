package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/studyhub/internal/app/auth"
	"github.com/yigit/studyhub/internal/app/controllers"
	"github.com/yigit/studyhub/internal/middleware"
	"github.com/yigit/studyhub/internal/pkg/metrics"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth     *controllers.AuthController
	Subject  *controllers.SubjectController
	Group    *controllers.GroupController
	Resource *controllers.ResourceController
	Profile  *controllers.ProfileController
	Health   *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	policy auth.Policy,
) {
	router.GET("/metrics", metrics.Handler())

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.GET("/health", ctrl.Health.Health)
	v1.GET("/subjects", ctrl.Subject.ListSubjects)
	v1.POST("/register", ctrl.Auth.Register)
	v1.POST("/login", ctrl.Auth.Login)
	v1.GET("/groups", ctrl.Group.ListGroups)

	// --- Policy-governed reads ---
	v1.GET("/groups/:id", authMiddleware.RequireAuthIf(policy.GroupRetrieveRequiresAuth), ctrl.Group.GetGroup)
	v1.GET("/resources", authMiddleware.RequireAuthIf(policy.ResourceListRequiresAuth), ctrl.Resource.ListResources)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/logout", ctrl.Auth.Logout)
		authenticated.DELETE("/account", ctrl.Auth.DeleteAccount)

		groups := authenticated.Group("/groups")
		{
			groups.POST("", ctrl.Group.CreateGroup)
			groups.PATCH("/:id", ctrl.Group.UpdateGroup)
			groups.DELETE("/:id", ctrl.Group.DeleteGroup)
			groups.POST("/:id/join", ctrl.Group.JoinGroup)
			groups.POST("/:id/leave", ctrl.Group.LeaveGroup)
		}

		authenticated.POST("/resources", ctrl.Resource.PostResource)

		authenticated.GET("/profile", ctrl.Profile.GetProfile)
		authenticated.PUT("/profile/subjects", ctrl.Profile.SetInterests)
		authenticated.GET("/matches", ctrl.Profile.FindMatches)
	}
}
