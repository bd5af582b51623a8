package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	db "tally-server/src/db/sql"
	"tally-server/src/models"
	"tally-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create category request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if !util.ValidateLabel(req.Name) {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		created, err := db.CreateCategory(r.Context(), pool, int(userID), strings.TrimSpace(req.Name))
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				http.Error(w, "category already exists", http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to create category for user %d: %v", userID, err)
			http.Error(w, "failed to create category", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Created category id %d for user %d, name %s", created.ID, userID, created.Name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetAllCategories(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		categories, err := db.GetAllCategories(r.Context(), pool, int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to get categories for user %d: %v", userID, err)
			http.Error(w, "failed to get categories", http.StatusInternalServerError)
			return
		}
		if categories == nil {
			categories = []models.Category{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(categories)
	}
}

func UpdateCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		categoryIDStr := chi.URLParam(r, "category_id")
		categoryID, err := strconv.Atoi(categoryIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid category id param: %s", categoryIDStr)
			http.Error(w, "invalid category id", http.StatusBadRequest)
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update category request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if !util.ValidateLabel(req.Name) {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		updated, err := db.UpdateCategory(r.Context(), pool, int(userID), categoryID, strings.TrimSpace(req.Name))
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, "category not found", http.StatusNotFound)
				return
			}
			if strings.Contains(err.Error(), "duplicate key") {
				http.Error(w, "category already exists", http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to update category id %d for user %d: %v", categoryID, userID, err)
			http.Error(w, "failed to update category", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Updated category id %d for user %d", updated.ID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		categoryIDStr := chi.URLParam(r, "category_id")
		categoryID, err := strconv.Atoi(categoryIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid category id param: %s", categoryIDStr)
			http.Error(w, "invalid category id", http.StatusBadRequest)
			return
		}
		if err := db.DeleteCategory(r.Context(), pool, int(userID), categoryID); err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, "category not found", http.StatusNotFound)
				return
			}
			log.Printf("ERROR: Failed to delete category id %d for user %d: %v", categoryID, userID, err)
			http.Error(w, "failed to delete category", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Deleted category id %d for user %d", categoryID, userID)
		w.WriteHeader(http.StatusNoContent)
	}
}
