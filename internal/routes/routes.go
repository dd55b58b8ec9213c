// Package routes wires handlers and middleware onto the gin engine.
package routes

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"marketplace-backend/internal/accounts"
	"marketplace-backend/internal/catalog"
	"marketplace-backend/internal/config"
	"marketplace-backend/internal/handlers"
	"marketplace-backend/internal/metrics"
	"marketplace-backend/internal/middleware"
	"marketplace-backend/internal/sellers"
)

// Deps is everything the routes need.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Accounts *accounts.Service
	Sellers  *sellers.Service
	Catalog  *catalog.Service
	Logger   *slog.Logger
}

// Setup is the single entry point that registers every route group.
func Setup(r *gin.Engine, d Deps) {
	store := cookie.NewStore([]byte(d.Config.Auth.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})

	handlers.RegisterValidators()

	r.Use(
		middleware.RequestLogger(d.Logger),
		middleware.Metrics(),
		cors.New(corsConfig(d.Config.HTTP.CORSOrigins)),
		sessions.Sessions("mp_session", store),
	)

	r.Static(d.Config.Uploads.PublicPath, d.Config.Uploads.Dir)
	r.GET("/health", handlers.Health(d.DB))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api", middleware.Authenticate(d.Accounts))
	setupAuthRoutes(api, d)
	setupSellerRoutes(api, d)
	setupProductRoutes(api, d)

	setupAdminRoutes(r, d)
}

// corsConfig allows any origin without credentials unless origins are
// listed explicitly. Cookies only ever go to listed origins.
func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-API-KEY")
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func setupAuthRoutes(api *gin.RouterGroup, d Deps) {
	auth := api.Group("/auth")
	auth.POST("/signup/", handlers.Signup(d.Accounts))
	auth.POST("/login/", handlers.Login(d.Accounts))
	auth.POST("/logout/", handlers.Logout)
	auth.GET("/me/", middleware.RequireAuth, handlers.WhoAmI)
}

func setupSellerRoutes(api *gin.RouterGroup, d Deps) {
	s := api.Group("/sellers", middleware.RequireAuth)
	s.POST("/register/", handlers.RegisterSeller(d.Sellers))
	s.GET("/me/", handlers.GetOwnProfile(d.Sellers))
	s.PUT("/me/", handlers.UpdateOwnProfile(d.Sellers))
	s.PATCH("/me/", handlers.UpdateOwnProfile(d.Sellers))
}

func setupProductRoutes(api *gin.RouterGroup, d Deps) {
	p := api.Group("/products", middleware.SellerOrReadOnly)
	p.GET("/categories/", handlers.ListCategories(d.Catalog))
	p.GET("/", handlers.ListProducts(d.Catalog))
	p.POST("/", handlers.CreateProduct(d.Catalog))
	p.GET("/:id/", handlers.GetProduct(d.Catalog))
	p.PUT("/:id/", handlers.UpdateProduct(d.Catalog))
	p.PATCH("/:id/", handlers.UpdateProduct(d.Catalog))
	p.DELETE("/:id/", handlers.DeleteProduct(d.Catalog))
	p.POST("/:id/images/", handlers.AddProductImage(d.Catalog))
	p.DELETE("/:id/images/:imageId/", handlers.DeleteProductImage(d.Catalog))
}

// setupAdminRoutes registers the staff API behind X-API-KEY.
func setupAdminRoutes(r *gin.Engine, d Deps) {
	admin := r.Group("/admin", middleware.ValidateAPIKey(d.Config.Admin.APIKey))

	categories := admin.Group("/categories")
	categories.GET("", handlers.ListCategories(d.Catalog))
	categories.POST("", handlers.AdminCreateCategory(d.Catalog))
	categories.PATCH("/:id", handlers.AdminUpdateCategory(d.Catalog))
	categories.DELETE("/:id", handlers.AdminDeleteCategory(d.Catalog))

	sellerAdmin := admin.Group("/sellers")
	sellerAdmin.GET("", handlers.AdminListSellers(d.Sellers))
	sellerAdmin.PATCH("/:id", handlers.AdminUpdateSeller(d.Sellers))
	sellerAdmin.DELETE("/:id", handlers.AdminDeleteSeller(d.Sellers))

	products := admin.Group("/products")
	products.GET("", handlers.AdminListProducts(d.Catalog))
	products.GET("/export-excel", handlers.ExportProducts(d.Catalog))
	products.PATCH("/:id", handlers.AdminUpdateProduct(d.Catalog))
}
