package routes

import (
	"github.com/julienschmidt/httprouter"

	"storefront/handlers"
	"storefront/middleware"
	"storefront/ratelim"
)

func AddSessionRoutes(router *httprouter.Router, h *handlers.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/session", rl.Limit(h.CreateSession))
	router.GET("/api/session", middleware.Authenticate(h.WithSession(h.GetSession)))
	router.DELETE("/api/session", middleware.Authenticate(h.WithSession(h.EndSession)))
}

func AddCatalogRoutes(router *httprouter.Router, h *handlers.Handler) {
	router.GET("/api/catalog", middleware.Authenticate(h.WithSession(h.GetCatalog)))
	router.POST("/api/catalog/reload", middleware.Authenticate(h.WithSession(h.ReloadCatalog)))
	router.PUT("/api/catalog/:product/color", middleware.Authenticate(h.WithSession(h.SelectColor)))
}

func AddCartRoutes(router *httprouter.Router, h *handlers.Handler) {
	router.GET("/api/cart", middleware.Authenticate(h.WithSession(h.GetCart)))
	router.DELETE("/api/cart", middleware.Authenticate(h.WithSession(h.ClearCart)))
	router.POST("/api/cart/items", middleware.Authenticate(h.WithSession(h.AddToCart)))
	router.PUT("/api/cart/items/:id", middleware.Authenticate(h.WithSession(h.UpdateQuantity)))
	router.DELETE("/api/cart/items/:id", middleware.Authenticate(h.WithSession(h.RemoveItem)))
}

func AddOrderRoutes(router *httprouter.Router, h *handlers.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/orders", middleware.Authenticate(rl.Limit(h.WithSession(h.PlaceOrder))))
	router.GET("/api/orders/current", middleware.Authenticate(h.WithSession(h.GetOrder)))
	router.DELETE("/api/orders/current", middleware.Authenticate(h.WithSession(h.DismissOrder)))
	router.GET("/api/orders/current/receipt", middleware.Authenticate(h.WithSession(h.DownloadReceipt)))
}

func AddAuthRoutes(router *httprouter.Router, h *handlers.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/login", middleware.Authenticate(rl.Limit(h.WithSession(h.Login))))
	router.POST("/api/auth/logout", middleware.Authenticate(h.WithSession(h.Logout)))
	router.GET("/api/auth/me", middleware.Authenticate(h.WithSession(h.Me)))

	router.PUT("/api/register/fields/:field", middleware.Authenticate(h.WithSession(h.ChangeField)))
	router.GET("/api/register/errors", middleware.Authenticate(h.WithSession(h.RegisterErrors)))
	router.POST("/api/register", middleware.Authenticate(rl.Limit(h.WithSession(h.Register))))
}

func AddLiveRoutes(router *httprouter.Router, h *handlers.Handler) {
	router.GET("/api/live", middleware.Authenticate(h.WithSession(h.Live)))
}

// New builds the router with every route.
// orderLimit guards order submission, authLimit session creation, login and
// registration.
func New(h *handlers.Handler, orderLimit, authLimit *ratelim.RateLimiter) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", handlers.Index)

	AddSessionRoutes(router, h, authLimit)
	AddCatalogRoutes(router, h)
	AddCartRoutes(router, h)
	AddOrderRoutes(router, h, orderLimit)
	AddAuthRoutes(router, h, authLimit)
	AddLiveRoutes(router, h)
	return router
}
