package engine

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the resource endpoints. Registration is public;
// everything else needs authMW, and category writes also need adminMW.
func RegisterRoutes(app *fiber.App, h *Handler, authMW, adminMW fiber.Handler) {
	api := app.Group("/api")

	api.Post("/user", h.Register)
	api.Get("/user", authMW, h.GetMe)
	api.Put("/user", authMW, h.UpdateMe)
	api.Delete("/user", authMW, h.DeleteMe)

	api.Get("/profile", authMW, h.GetProfile)
	api.Put("/profile", authMW, h.UpdateProfile)

	category := api.Group("/category", authMW)
	category.Get("/", h.ListCategories)
	category.Get("/:id", h.GetCategory)
	category.Post("/", adminMW, h.CreateCategory)
	category.Put("/:id", adminMW, h.UpdateCategory)
	category.Delete("/:id", adminMW, h.DeleteCategory)

	post := api.Group("/post", authMW)
	post.Get("/", h.ListPosts)
	post.Get("/my", h.ListMyPosts)
	post.Post("/", h.CreatePost)
	post.Get("/:id", h.GetPost)
	post.Put("/:id", h.UpdatePost)
	post.Delete("/:id", h.DeletePost)

	comment := post.Group("/:postId/comment")
	comment.Get("/", h.ListComments)
	comment.Post("/", h.CreateComment)
	comment.Get("/:commentId", h.GetComment)
	comment.Put("/:commentId", h.UpdateComment)
	comment.Delete("/:commentId", h.DeleteComment)
}
