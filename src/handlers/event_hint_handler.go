package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	db "tally-server/src/db/sql"
	"tally-server/src/hints"
	"tally-server/src/models"
	"tally-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateEventHint(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		var req struct {
			Name              string `json:"name"`
			CelExpression     string `json:"cel_expression"`
			PrefillName       string `json:"prefill_name"`
			PrefillCategoryID *int   `json:"prefill_category_id"`
			IsActive          *bool  `json:"is_active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create event hint request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if !util.ValidateLabel(req.Name) || !util.ValidateLabel(req.PrefillName) {
			http.Error(w, "name and prefill_name are required", http.StatusBadRequest)
			return
		}
		hint := &models.EventHint{
			UserID:            int(userID),
			Name:              req.Name,
			CelExpression:     req.CelExpression,
			PrefillName:       req.PrefillName,
			PrefillCategoryID: req.PrefillCategoryID,
			IsActive:          true,
		}
		if req.IsActive != nil {
			hint.IsActive = *req.IsActive
		}
		created, err := db.CreateEventHint(r.Context(), pool, hint)
		if err != nil {
			if isExpressionError(err) {
				log.Printf("INFO: Rejected invalid hint expression from user %d: %v", userID, err)
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			log.Printf("ERROR: Failed to create event hint for user %d: %v", userID, err)
			http.Error(w, "failed to create event hint", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Created event hint id %d for user %d, name %s", created.ID, userID, created.Name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetAllEventHints(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		eventHints, err := db.GetAllEventHints(r.Context(), pool, int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to get event hints for user %d: %v", userID, err)
			http.Error(w, "failed to get event hints", http.StatusInternalServerError)
			return
		}
		if eventHints == nil {
			eventHints = []models.EventHint{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(eventHints)
	}
}

func GetEventHintByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		hintID, err := hintIDParam(r)
		if err != nil {
			http.Error(w, "invalid hint id", http.StatusBadRequest)
			return
		}
		hint, err := db.GetEventHintByID(r.Context(), pool, int(userID), hintID)
		if err != nil {
			log.Printf("ERROR: Event hint id %d not found for user %d: %v", hintID, userID, err)
			http.Error(w, "event hint not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(hint)
	}
}

func UpdateEventHint(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		hintID, err := hintIDParam(r)
		if err != nil {
			http.Error(w, "invalid hint id", http.StatusBadRequest)
			return
		}
		var req struct {
			Name              *string         `json:"name"`
			CelExpression     *string         `json:"cel_expression"`
			PrefillName       *string         `json:"prefill_name"`
			PrefillCategoryID json.RawMessage `json:"prefill_category_id"`
			IsActive          *bool           `json:"is_active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update event hint request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		patch := models.EventHintPatch{
			Name:          req.Name,
			CelExpression: req.CelExpression,
			PrefillName:   req.PrefillName,
			IsActive:      req.IsActive,
		}
		// An explicit null clears the category; an absent key leaves it alone.
		if len(req.PrefillCategoryID) > 0 {
			patch.PrefillCategorySet = true
			if string(req.PrefillCategoryID) != "null" {
				var id int
				if err := json.Unmarshal(req.PrefillCategoryID, &id); err != nil {
					http.Error(w, "invalid prefill_category_id", http.StatusBadRequest)
					return
				}
				patch.PrefillCategoryID = &id
			}
		}
		if patch.Name != nil && !util.ValidateLabel(*patch.Name) {
			http.Error(w, "name must not be empty", http.StatusBadRequest)
			return
		}
		if patch.PrefillName != nil && !util.ValidateLabel(*patch.PrefillName) {
			http.Error(w, "prefill_name must not be empty", http.StatusBadRequest)
			return
		}
		updated, err := db.UpdateEventHint(r.Context(), pool, int(userID), hintID, patch)
		if err != nil {
			if isExpressionError(err) {
				log.Printf("INFO: Rejected invalid hint expression from user %d: %v", userID, err)
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, db.ErrHintNotFound) {
				http.Error(w, "event hint not found", http.StatusNotFound)
				return
			}
			log.Printf("ERROR: Failed to update event hint id %d for user %d: %v", hintID, userID, err)
			http.Error(w, "failed to update event hint", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Updated event hint id %d for user %d", updated.ID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteEventHint(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		hintID, err := hintIDParam(r)
		if err != nil {
			http.Error(w, "invalid hint id", http.StatusBadRequest)
			return
		}
		if err := db.DeleteEventHint(r.Context(), pool, int(userID), hintID); err != nil {
			if errors.Is(err, db.ErrHintNotFound) {
				http.Error(w, "event hint not found", http.StatusNotFound)
				return
			}
			log.Printf("ERROR: Failed to delete event hint id %d for user %d: %v", hintID, userID, err)
			http.Error(w, "failed to delete event hint", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Deleted event hint id %d for user %d", hintID, userID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ReorderEventHints replaces the user's whole hint order with the posted id
// list. The list must contain every hint exactly once or nothing changes.
func ReorderEventHints(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		var req struct {
			HintIDs []int `json:"hint_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode reorder event hints request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		err := db.ReorderEventHints(r.Context(), pool, int(userID), req.HintIDs)
		if err != nil {
			if errors.Is(err, db.ErrHintSetMismatch) {
				log.Printf("INFO: Rejected reorder with mismatched hint set for user %d: %v", userID, err)
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to reorder event hints for user %d: %v", userID, err)
			http.Error(w, "failed to reorder event hints", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Reordered %d event hints for user %d", len(req.HintIDs), userID)
		eventHints, err := db.GetAllEventHints(r.Context(), pool, int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to get event hints after reorder for user %d: %v", userID, err)
			http.Error(w, "failed to get event hints", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(eventHints)
	}
}

// ValidateEventHintExpression checks an expression without storing anything,
// so the hint editor can flag errors as the user types.
func ValidateEventHintExpression() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Expression string `json:"expression"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		resp := struct {
			IsValid bool   `json:"is_valid"`
			Error   string `json:"error,omitempty"`
		}{IsValid: true}
		if err := hints.Validate(req.Expression); err != nil {
			resp.IsValid = false
			resp.Error = err.Error()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// MatchEventHints runs the user's hints against a candidate selection of line
// items. One id evaluates the hints per item; several ids evaluate them
// against the set as a whole.
func MatchEventHints(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		var req struct {
			LineItemIDs []string `json:"line_item_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode match request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if len(req.LineItemIDs) == 0 {
			http.Error(w, "line_item_ids must not be empty", http.StatusBadRequest)
			return
		}
		items, err := db.GetLineItemsByIDs(r.Context(), pool, int(userID), req.LineItemIDs)
		if err != nil {
			log.Printf("ERROR: Failed to get line items for match for user %d: %v", userID, err)
			http.Error(w, "line items not found", http.StatusNotFound)
			return
		}
		eventHints, err := db.GetAllEventHints(r.Context(), pool, int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to get event hints for match for user %d: %v", userID, err)
			http.Error(w, "failed to get event hints", http.StatusInternalServerError)
			return
		}

		var result hints.MatchResult
		if len(items) == 1 {
			result = hints.MatchOne(eventHints, items[0])
		} else {
			result = hints.MatchSet(eventHints, items)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func hintIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "hint_id"))
}

// isExpressionError reports whether err came from expression parsing or
// validation, i.e. the caller sent a bad expression rather than us failing.
func isExpressionError(err error) bool {
	var parseErr *hints.ParseError
	var validationErr *hints.ValidationError
	return errors.As(err, &parseErr) || errors.As(err, &validationErr)
}
