package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/woominecraft/wmcbridge/internal/admin"
	"github.com/woominecraft/wmcbridge/internal/checkout"
	"github.com/woominecraft/wmcbridge/internal/feed"
	"github.com/woominecraft/wmcbridge/internal/logger"
	"github.com/woominecraft/wmcbridge/internal/middleware"
	"github.com/woominecraft/wmcbridge/internal/order"
	"github.com/woominecraft/wmcbridge/internal/product"
)

// NewRouter maps the platform triggers onto routes: checkout-submit,
// order-finalize, product-save and feed-request each get an explicit
// handler instead of hook registrations.
func NewRouter(
	checkoutH *checkout.Handler,
	orderH *order.Handler,
	productH *product.Handler,
	feedH *feed.Handler,
	adminH *admin.Handler,
	jwtSecret []byte,
	adminRepo admin.Repository,
	hashKey string,
) chi.Router {
	r := chi.NewRouter()

	r.Use(logger.WithLogging)
	r.Use(chiMiddleware.Recoverer)

	r.Use(middleware.GzipHandler)

	// polled by the game server; guarded by the shared key alone
	r.Get("/wmc", feedH.Serve)
	r.Post("/wmc", feedH.Serve)

	r.Route("/api", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return middleware.HashHandler(next, hashKey)
		})

		r.Post("/admin/register", adminH.Register)
		r.Post("/admin/login", adminH.Login)

		r.Post("/checkout/requirements", checkoutH.Requirements)
		r.Post("/checkout/validate", checkoutH.Validate)

		r.Post("/orders", orderH.Ingest)
		r.Get("/orders/{orderID}/confirmation", orderH.Confirmation)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTMiddleware(jwtSecret, adminRepo))

			r.Get("/products", productH.List)
			r.Post("/products", productH.Create)
			r.Get("/products/{productID}", productH.Get)
			r.Put("/products/{productID}", productH.Update)

			r.Post("/orders/undeliver", orderH.Undeliver)
		})
	})

	return r
}
