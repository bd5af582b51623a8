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

func CreateEvent(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		var req struct {
			Name        string   `json:"name"`
			CategoryID  *int     `json:"category_id"`
			LineItemIDs []string `json:"line_item_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create event request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if !util.ValidateLabel(req.Name) {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		event := &models.Event{
			UserID:     int(userID),
			Name:       req.Name,
			CategoryID: req.CategoryID,
		}
		created, err := db.CreateEvent(r.Context(), pool, event, req.LineItemIDs)
		if err != nil {
			if strings.Contains(err.Error(), "already grouped") {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to create event for user %d: %v", userID, err)
			http.Error(w, "failed to create event", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Created event id %d for user %d with %d line items", created.ID, userID, len(created.LineItemIDs))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetAllEvents(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		events, err := db.GetAllEventsForUser(r.Context(), pool, int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to get events for user %d: %v", userID, err)
			http.Error(w, "failed to get events", http.StatusInternalServerError)
			return
		}
		if events == nil {
			events = []models.Event{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(events)
	}
}

func GetEventByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		eventID, err := eventIDParam(r)
		if err != nil {
			http.Error(w, "invalid event id", http.StatusBadRequest)
			return
		}
		event, err := db.GetEventByID(r.Context(), pool, int(userID), eventID)
		if err != nil {
			log.Printf("ERROR: Event id %d not found for user %d: %v", eventID, userID, err)
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(event)
	}
}

func UpdateEvent(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		eventID, err := eventIDParam(r)
		if err != nil {
			http.Error(w, "invalid event id", http.StatusBadRequest)
			return
		}
		var req struct {
			Name       string `json:"name"`
			CategoryID *int   `json:"category_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update event request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if !util.ValidateLabel(req.Name) {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		event := &models.Event{
			ID:         eventID,
			UserID:     int(userID),
			Name:       req.Name,
			CategoryID: req.CategoryID,
		}
		updated, err := db.UpdateEvent(r.Context(), pool, event)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, "event not found", http.StatusNotFound)
				return
			}
			log.Printf("ERROR: Failed to update event id %d for user %d: %v", eventID, userID, err)
			http.Error(w, "failed to update event", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Updated event id %d for user %d", updated.ID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteEvent(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		eventID, err := eventIDParam(r)
		if err != nil {
			http.Error(w, "invalid event id", http.StatusBadRequest)
			return
		}
		if err := db.DeleteEvent(r.Context(), pool, int(userID), eventID); err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, "event not found", http.StatusNotFound)
				return
			}
			log.Printf("ERROR: Failed to delete event id %d for user %d: %v", eventID, userID, err)
			http.Error(w, "failed to delete event", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Deleted event id %d for user %d", eventID, userID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func eventIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "event_id"))
}
