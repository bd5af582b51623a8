package api

import (
	"net/http"

	"tally-server/src/handlers"
	"tally-server/src/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plaid/plaid-go/v41/plaid"
)

func NewRouter(pool *pgxpool.Pool, plaidClient *plaid.APIClient, isDemo bool) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.DemoModeMiddleware(isDemo))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(pool))
		r.Post("/register", handlers.Register(pool))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			// User
			r.Get("/user", handlers.GetUser(pool))
			r.Put("/user", handlers.UpdateUser(pool))
			r.Post("/user/change-password", handlers.ChangePassword(pool))
			r.Delete("/user", handlers.DeleteUser(pool))

			// Event hints
			r.Post("/event-hints", handlers.CreateEventHint(pool))
			r.Get("/event-hints", handlers.GetAllEventHints(pool))
			r.Get("/event-hints/{hint_id}", handlers.GetEventHintByID(pool))
			r.Put("/event-hints/{hint_id}", handlers.UpdateEventHint(pool))
			r.Delete("/event-hints/{hint_id}", handlers.DeleteEventHint(pool))
			r.Post("/event-hints/reorder", handlers.ReorderEventHints(pool))
			r.Post("/event-hints/validate", handlers.ValidateEventHintExpression())
			r.Post("/event-hints/match", handlers.MatchEventHints(pool))

			// Categories
			r.Post("/categories", handlers.CreateCategory(pool))
			r.Get("/categories", handlers.GetAllCategories(pool))
			r.Put("/categories/{category_id}", handlers.UpdateCategory(pool))
			r.Delete("/categories/{category_id}", handlers.DeleteCategory(pool))

			// Events
			r.Post("/events", handlers.CreateEvent(pool))
			r.Get("/events", handlers.GetAllEvents(pool))
			r.Get("/events/{event_id}", handlers.GetEventByID(pool))
			r.Put("/events/{event_id}", handlers.UpdateEvent(pool))
			r.Delete("/events/{event_id}", handlers.DeleteEvent(pool))

			// Line items
			r.Post("/line-items", handlers.CreateLineItem(pool))
			r.Get("/line-items", handlers.GetAllLineItems(pool))
			r.Put("/line-items/{line_item_id}", handlers.UpdateLineItem(pool))
			r.Delete("/line-items/{line_item_id}", handlers.DeleteLineItem(pool))

			// Plaid
			r.Post("/plaid/create-link-token", handlers.CreateLinkToken(plaidClient, pool))
			r.Post("/plaid/exchange-public-token", handlers.ExchangePublicToken(plaidClient, pool))
			r.Get("/plaid/items", handlers.GetPlaidItemsFromDB(pool))
			r.Get("/plaid/accounts/{item_id}", handlers.GetPlaidAccounts(plaidClient, pool))
			r.Get("/plaid/accounts/{item_id}/db", handlers.GetAccountsFromDB(pool))
			r.Get("/plaid/line-items/{item_id}/sync", handlers.SyncLineItems(plaidClient, pool))
			r.Delete("/plaid/items/{item_id}", handlers.DeletePlaidItem(pool))
		})

		// Super Admin Routes
		r.With(middleware.JWTAuthMiddleware, middleware.SuperAdminMiddleware).Group(func(r chi.Router) {
			r.Post("/admin/user/lock/{user_id}", handlers.LockUser(pool))
			r.Post("/admin/user/unlock/{user_id}", handlers.UnlockUser(pool))
			r.Post("/admin/cache/clear/{cache_name}", handlers.ClearCache(pool))
		})
	})

	return r
}
