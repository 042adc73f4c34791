package routes

import (
	"github.com/gofiber/fiber/v2"

	"feed_workspace/internal/handlers"
	"feed_workspace/internal/middleware"
)

func PostRoutes(app *fiber.App, deps Deps) {
	app.Get("/posts/:id", handlers.GetPostHandler(deps.PostView))
	app.Get("/files/:id", handlers.FilesHandler(deps.Blobs))

	auth := middleware.RequireAuth()
	app.Post("/posts", auth, handlers.CreatePostHandler(deps.Dispatcher, deps.Publisher))
	app.Patch("/posts/:id", auth, handlers.UpdatePostHandler(deps.Dispatcher, deps.Publisher, deps.PostView))
	app.Delete("/posts/:id", auth, handlers.DeletePostHandler(deps.Dispatcher, deps.Publisher, deps.PostView))
}
