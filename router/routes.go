package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/superrabbithero/appmanage/auth"
	handler "github.com/superrabbithero/appmanage/handlers"
	"github.com/superrabbithero/appmanage/middleware"
)

func SetupRoutes(app *fiber.App, h *handler.Handler, tokens *auth.Service) {
	app.Use(recover.New())
	app.Static("/static", "./static")
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(middleware.Registry, promhttp.HandlerOpts{})))

	protected := middleware.AuthMiddleware(tokens)
	api := app.Group("/api", logger.New(), middleware.Metrics())

	// Images
	images := api.Group("/images")
	images.Post("/reserve", h.ReserveImage)
	images.Patch("/batch-status", h.BatchUpdateImageStatus)
	images.Put("/relations", h.UpdateDocumentImages)
	images.Get("/documents/:doc_id<int>", h.GetDocumentImages)
	images.Get("/:id<int>/documents", protected, h.GetImageDocuments)

	// Documents
	docs := api.Group("/documents")
	docs.Get("/", protected, h.ListDocuments)
	docs.Post("/", protected, h.CreateDocument)
	docs.Put("/", protected, h.UpdateDocument)
	docs.Delete("/", protected, h.DeleteDocument)
	docs.Get("/home", h.ListHomeDocuments)
	docs.Get("/detail", h.GetDocument)
	docs.Post("/reserve", protected, h.ReserveDocument)
	docs.Put("/publish", protected, h.PublishDocument)
	docs.Get("/categories", h.GetCategoryTree)
	docs.Get("/categories/:id<int>/children", h.GetCategoryChildren)
	docs.Get("/categories/:id<int>/documents", protected, h.ListCategoryDocuments)
	docs.Get("/tags", h.SearchTags)
	docs.Get("/tags/:tag_id<int>/documents", protected, h.ListTagDocuments)
	docs.Get("/:doc_id<int>/tags", h.GetDocumentTags)
	docs.Post("/:doc_id<int>/tags", h.AddDocumentTag)
	docs.Delete("/:doc_id<int>/tags/:tag_id<int>", h.RemoveDocumentTag)

	// Packages
	packages := api.Group("/packages")
	packages.Get("/ip", h.ServerAddress)
	packages.Post("/", h.CreatePackage)
	packages.Get("/versions", h.ListVersions)
	packages.Get("/search", protected, h.SearchPackages)
	packages.Get("/download", h.DownloadLink)
	packages.Get("/:id<int>", h.GetPackage)
	packages.Put("/:id<int>", h.UpdatePackage)
	packages.Delete("/:id<int>", h.DeletePackage)

	// Users
	users := api.Group("/users")
	users.Post("/register", h.Register)
	users.Post("/login", h.Login)
	users.Post("/logout", h.Logout)
	users.Post("/change-password", protected, h.ChangePassword)
	users.Get("/:id<int>", h.GetUser)

	// Issues
	issues := api.Group("/issues")
	issues.Get("/", h.ListIssues)
	issues.Post("/", h.CreateIssue)
	issues.Post("/fetch", h.ImportIssues)
	issues.Post("/dingtalk/webhook", h.DingTalkWebhook)
	issues.Get("/:id<int>", h.GetIssue)
	issues.Put("/:id<int>/status", h.UpdateIssueStatus)
	issues.Delete("/:id<int>", h.DeleteIssue)

	// Object storage
	api.Get("/oss/sts-token", h.UploadToken)

	// Third party
	api.Get("/xuece/get_answercard", h.GetAnswerCard)
	api.Post("/bailian/image_generation", h.GenerateImage)
}
