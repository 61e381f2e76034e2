package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/shop-api/internal/auth"
	"github.com/jcmexdev/shop-api/internal/httpx/middlewares"
)

// NewRouter wires the full HTTP surface. Catalog reads are public; every
// basket operation and every catalog mutation sits behind the auth
// middleware plus a per-route capability check.
func NewRouter(handler *Handler, authSvc *auth.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", handler.Health)

	r.Get("/products", handler.ListProducts)
	r.Get("/products/{id}", handler.GetProduct)
	r.Get("/shops", handler.ListShops)
	r.Get("/shops/{id}", handler.GetShop)

	r.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticate(authSvc))

		r.With(middlewares.RequirePermission(auth.PermChangeBasket)).
			Get("/basket/add/{productID}", handler.AddProductToBasket)
		r.With(middlewares.RequirePermission(auth.PermViewBasket)).
			Get("/basket", handler.ViewBasket)
		r.With(middlewares.RequirePermission(auth.PermViewBasket)).
			Get("/basket/total", handler.ViewTotal)
		r.With(middlewares.RequirePermission(auth.PermChangeBasket)).
			Post("/basket/pay", handler.Pay)
		r.With(middlewares.RequirePermission(auth.PermViewBasket)).
			Get("/baskets", handler.ListBaskets)

		r.With(middlewares.RequirePermission(auth.PermAddProduct)).
			Post("/products", handler.CreateProduct)
		r.With(middlewares.RequirePermission(auth.PermChangeProduct)).
			Put("/products/{id}", handler.UpdateProduct)
		r.With(middlewares.RequirePermission(auth.PermDeleteProduct)).
			Delete("/products/{id}", handler.DeleteProduct)

		r.With(middlewares.RequirePermission(auth.PermAddShop)).
			Post("/shops", handler.CreateShop)
		r.With(middlewares.RequirePermission(auth.PermChangeShop)).
			Put("/shops/{id}", handler.UpdateShop)
	})

	return otelhttp.NewHandler(r, "shop-api")
}
