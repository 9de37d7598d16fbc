package routes

import (
	"github.com/gin-gonic/gin"

	"velora_back_end/internal/database"
	adminhandlers "velora_back_end/internal/handlers/admin"
	producthandlers "velora_back_end/internal/handlers/product"
	userhandlers "velora_back_end/internal/handlers/user"
	"velora_back_end/internal/middleware"
)

func RegisterRoutes(r *gin.Engine) {
	limiter := middleware.NewRateLimiter(database.Redis)

	api := r.Group("/api")
	api.Use(limiter.API())

	// Auth
	auth := api.Group("/auth")
	{
		auth.POST("/register", limiter.Register(), userhandlers.Register)
		auth.POST("/login", limiter.Login(), userhandlers.Login)
		auth.POST("/logout", middleware.AuthRequired(), userhandlers.Logout)
		auth.GET("/me", middleware.AuthRequired(), userhandlers.Me)
		auth.PUT("/profile", middleware.AuthRequired(), userhandlers.UpdateProfile)
		auth.PUT("/change-password", middleware.AuthRequired(), userhandlers.ChangePassword)
		auth.POST("/refresh-token", userhandlers.RefreshToken)
		auth.POST("/forgot-password", limiter.ForgotPassword(), userhandlers.ForgotPassword)
		auth.POST("/reset-password", userhandlers.ResetPassword)
		auth.DELETE("/account", middleware.AuthRequired(), userhandlers.DeleteAccount)

		// OAuth (Google / Facebook)
		auth.GET("/:provider", userhandlers.BeginAuth)
		auth.GET("/:provider/callback", userhandlers.CallbackAuth)
	}

	// Catalogue public (le contexte utilisateur est rempli si un token est présent)
	products := api.Group("/products", middleware.OptionalAuth())
	{
		products.GET("", producthandlers.ListProducts)
		products.GET("/search", limiter.Search(), producthandlers.SearchProducts)
		products.GET("/categories", producthandlers.GetCategories)
		products.GET("/featured", producthandlers.GetFeatured)
		products.GET("/new-arrivals", producthandlers.GetNewArrivals)
		products.GET("/best-sellers", producthandlers.GetBestSellers)
		products.GET("/category/:category", producthandlers.GetByCategory)
		products.GET("/images/url/*object", producthandlers.GetImageURL)

		// Wishlist (déclarée avant /:id pour ne pas être avalée par le paramètre)
		wishlist := products.Group("/wishlist", middleware.AuthRequired())
		{
			wishlist.GET("", userhandlers.GetWishlist)
			wishlist.POST("", userhandlers.AddToWishlist)
			wishlist.DELETE("/clear", userhandlers.ClearWishlist)
			wishlist.DELETE("/:productId", userhandlers.RemoveFromWishlist)
			wishlist.GET("/check/:productId", userhandlers.CheckWishlist)
			wishlist.POST("/share", userhandlers.ShareWishlist)
		}

		products.GET("/:id", producthandlers.GetProduct)
		products.GET("/:id/related", producthandlers.GetRelated)
		products.GET("/:id/reviews", producthandlers.ListReviews)
	}

	// Avis
	reviews := api.Group("/reviews", middleware.AuthRequired())
	{
		reviews.POST("", producthandlers.CreateReview)
		reviews.PUT("/:id", producthandlers.UpdateReview)
		reviews.DELETE("/:id", producthandlers.DeleteReview)
		reviews.POST("/:id/vote", producthandlers.VoteReview)
	}

	// Panier
	cart := api.Group("/cart", middleware.AuthRequired())
	{
		cart.GET("", userhandlers.GetCart)
		cart.GET("/count", userhandlers.CartCount)
		cart.GET("/ws", userhandlers.CartWebSocket)
		cart.POST("/items", limiter.Cart(), userhandlers.AddToCart)
		cart.PUT("/items/:productId", userhandlers.UpdateCartItem)
		cart.DELETE("/items/:productId", userhandlers.RemoveFromCart)
		cart.DELETE("", userhandlers.ClearCart)
		cart.POST("/items/:productId/save-for-later", userhandlers.SaveForLater)
		cart.POST("/items/:productId/move-to-cart", userhandlers.MoveToCart)
		cart.POST("/merge", userhandlers.MergeCart)
	}

	// Commandes
	orders := api.Group("/orders", middleware.AuthRequired())
	{
		orders.POST("", userhandlers.CreateOrder)
		orders.GET("", userhandlers.ListOrders)
		orders.GET("/:id", userhandlers.GetOrder)
		orders.PUT("/:id/cancel", userhandlers.CancelOrder)
	}

	// Back-office
	admin := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin())
	{
		admin.GET("/dashboard", adminhandlers.Dashboard)
		admin.GET("/users", adminhandlers.ListUsers)
		admin.PUT("/users/:id", adminhandlers.UpdateUser)
		admin.GET("/orders", adminhandlers.ListOrders)
		admin.PUT("/orders/:id/status", adminhandlers.UpdateOrderStatus)

		admin.GET("/products", producthandlers.ListAllProducts)
		admin.POST("/products", producthandlers.CreateProduct)
		admin.PUT("/products/:id", producthandlers.UpdateProduct)
		admin.DELETE("/products/:id", producthandlers.DeleteProduct)
		admin.PATCH("/products/:id/toggle", producthandlers.ToggleProductStatus)
		admin.POST("/products/:id/images", producthandlers.UploadImage)
		admin.DELETE("/products/:id/images", producthandlers.DeleteImage)
	}
}
