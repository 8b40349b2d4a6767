package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	Auth           *Auth
	Cart           *CartHandler
	Checkout       *CheckoutHandler
	Catalog        *CatalogHandler
	User           *UserHandler
}

// NewRouter wires the storefront REST surface.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(cfg.Auth.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Catalog reads are public.
	r.Get("/items", cfg.Catalog.ListItems)
	r.Get("/items/{id}", cfg.Catalog.GetItem)
	r.Get("/categories", cfg.Catalog.ListCategories)

	r.Post("/api/register", cfg.User.Register)
	r.Post("/api/login", cfg.User.Login)

	r.Get("/user/{id}", cfg.User.GetUser)
	r.Put("/user/{id}", cfg.User.UpdateAddress)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", cfg.Cart.GetCart)
		r.Post("/items", cfg.Cart.AddItem)
		r.Put("/items/{product_id}", cfg.Cart.UpdateQuantity)
		r.Delete("/items/{product_id}", cfg.Cart.RemoveItem)
		r.Post("/clear", cfg.Cart.ClearCart)
	})

	r.Post("/checkout/quote", cfg.Checkout.Quote)
	r.Get("/checkout/resume", cfg.Checkout.Resume)
	r.Post("/order/place", cfg.Checkout.PlaceOrder)
	r.Get("/orders", cfg.Checkout.ListOrders)
	r.Post("/create-payment-intent", cfg.Checkout.CreatePaymentIntent)

	return r
}
