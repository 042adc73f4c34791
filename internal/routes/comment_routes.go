package routes

import (
	"github.com/gofiber/fiber/v2"

	"feed_workspace/internal/handlers"
	"feed_workspace/internal/middleware"
)

func CommentRoutes(app *fiber.App, deps Deps) {
	app.Get("/posts/:id/comments", handlers.ListCommentsHandler(deps.Comments))
	app.Post("/posts/:id/comments", middleware.RequireAuth(),
		handlers.CreateCommentHandler(deps.Dispatcher, deps.Comments))
}
