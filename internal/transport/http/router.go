package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/course-signup/internal/transport/http/handler"
	"github.com/ErlanBelekov/course-signup/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type Handlers struct {
	Users         *handler.UserHandler
	Confirmations *handler.ConfirmationHandler
	Courses       *handler.CourseHandler
	Catalog       *handler.CatalogHandler
	Uploads       *handler.UploadHandler
}

func NewRouter(logger *slog.Logger, h Handlers, authn *middleware.Authenticator) *gin.Engine {
	handler.UseJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())
	r.SetHTMLTemplate(handler.Templates())

	access := authn.Access()

	// Accounts
	r.POST("/register", h.Users.Register)
	r.PUT("/register", h.Users.SetTemporaryPassword)
	r.POST("/login", h.Users.Login)
	r.POST("/refresh", authn.Refresh(), h.Users.Refresh)
	r.POST("/logout", access, h.Users.Logout)
	r.GET("/user/:id", access, h.Users.Get)
	r.DELETE("/user/:id", access, h.Users.Delete)
	r.POST("/change_password/:id", access, h.Users.ChangePassword)

	// Confirmations
	r.GET("/user_confirm/:id", h.Confirmations.ConfirmByLink)
	r.GET("/confirmation/user/:id", h.Confirmations.List)
	r.POST("/confirmation/user/:id", h.Confirmations.Resend)
	r.POST("/confirmation_code/user/:id", h.Confirmations.ConfirmByCode)

	// Courses
	r.GET("/course/:ref", h.Courses.Get)
	r.POST("/course/:ref", h.Courses.Create)
	r.DELETE("/course/:ref", h.Courses.Delete)
	r.GET("/courses", h.Courses.List)
	r.POST("/enroll/", h.Courses.Enroll)
	r.POST("/disenroll/", h.Courses.Disenroll)
	r.GET("/enrolled_users/:id", h.Courses.EnrolledUsers)

	// Catalog
	r.GET("/item/:name", access, h.Catalog.GetItem)
	r.POST("/item/:name", authn.Fresh(), h.Catalog.CreateItem)
	r.PUT("/item/:name", access, h.Catalog.PutItem)
	r.DELETE("/item/:name", access, h.Catalog.DeleteItem)
	r.GET("/items", authn.Optional(), h.Catalog.ListItems)
	r.GET("/store/:name", h.Catalog.GetStore)
	r.POST("/store/:name", h.Catalog.CreateStore)
	r.DELETE("/store/:name", h.Catalog.DeleteStore)
	r.GET("/stores", h.Catalog.ListStores)

	r.POST("/upload/image", access, h.Uploads.Image)

	return r
}
