package routes

import (
	"github.com/gofiber/fiber/v2"

	"feed_workspace/internal/dispatch"
	"feed_workspace/internal/repository"
	"feed_workspace/services"
)

// Deps carries everything the route groups need; handlers close over the
// pieces they use.
type Deps struct {
	Dispatcher *dispatch.Dispatcher
	Publisher  *services.Publisher
	Likes      *services.LikeService
	Comments   *services.CommentService
	Feed       *services.FeedPaginator
	PostView   *services.PostViewService
	Blobs      *repository.GridFSBlobStore
}

func Register(app *fiber.App, deps Deps) {
	PostRoutes(app, deps)
	LikeRoutes(app, deps)
	CommentRoutes(app, deps)
	FeedRoutes(app, deps)
}
