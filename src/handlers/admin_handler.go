package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"tally-server/src/db"
	sqldb "tally-server/src/db/sql"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func LockUser(pool *pgxpool.Pool) http.HandlerFunc {
	return setUserLocked(pool, true)
}

func UnlockUser(pool *pgxpool.Pool) http.HandlerFunc {
	return setUserLocked(pool, false)
}

func setUserLocked(pool *pgxpool.Pool, locked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targetIDStr := chi.URLParam(r, "user_id")
		targetID, err := strconv.Atoi(targetIDStr)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}
		if err := sqldb.SetUserLocked(r.Context(), pool, targetID, locked); err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			log.Printf("ERROR: Failed to set locked=%t for user %d: %v", locked, targetID, err)
			http.Error(w, "failed to update user", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Set locked=%t for user %d", locked, targetID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func ClearCache(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cacheName := chi.URLParam(r, "cache_name")
		switch cacheName {
		case "event_hints":
			db.ClearAllHintCaches()
		case "categories":
			db.ClearAllCategoryCaches()
		case "line_items":
			db.ClearAllLineItemCaches()
		case "all":
			db.ClearAllHintCaches()
			db.ClearAllCategoryCaches()
			db.ClearAllLineItemCaches()
		default:
			http.Error(w, "unknown cache name", http.StatusBadRequest)
			return
		}
		log.Printf("INFO: Cleared cache %s", cacheName)
		w.WriteHeader(http.StatusNoContent)
	}
}
