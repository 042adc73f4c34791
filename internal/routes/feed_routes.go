package routes

import (
	"github.com/gofiber/fiber/v2"

	"feed_workspace/internal/handlers"
)

func FeedRoutes(app *fiber.App, deps Deps) {
	app.Get("/feed", handlers.FeedHandler(deps.Feed))
}
