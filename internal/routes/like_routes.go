package routes

import (
	"github.com/gofiber/fiber/v2"

	"feed_workspace/internal/handlers"
	"feed_workspace/internal/middleware"
)

func LikeRoutes(app *fiber.App, deps Deps) {
	app.Post("/likes", middleware.RequireAuth(),
		handlers.LikeToggleHandler(deps.Dispatcher, deps.Likes, deps.PostView))
}
