package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	db "tally-server/src/db/sql"
	"tally-server/src/models"
	"tally-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// lineItemRequest is the write shape for manual line items. The amount comes
// in as a string so values like "12.30" survive exactly; positive = money
// out, negative = money in.
type lineItemRequest struct {
	Date             string `json:"date"`
	Description      string `json:"description"`
	Amount           string `json:"amount"`
	PaymentMethod    string `json:"payment_method"`
	ResponsibleParty string `json:"responsible_party"`
}

func (req *lineItemRequest) toLineItem() (*models.LineItem, string) {
	if !util.ValidateLabel(req.Description) {
		return nil, "description is required"
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, "date must be formatted YYYY-MM-DD"
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, "amount must be a decimal number"
	}
	return &models.LineItem{
		Date:             date,
		Description:      req.Description,
		Amount:           amount,
		PaymentMethod:    req.PaymentMethod,
		ResponsibleParty: req.ResponsibleParty,
	}, ""
}

func CreateLineItem(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		var req lineItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create line item request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		li, msg := req.toLineItem()
		if msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		li.UserID = int(userID)
		created, err := db.CreateLineItem(r.Context(), pool, li)
		if err != nil {
			log.Printf("ERROR: Failed to create line item for user %d: %v", userID, err)
			http.Error(w, "failed to create line item", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Created line item %s for user %d", created.ID, userID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetAllLineItems(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		ungroupedOnly := r.URL.Query().Get("ungrouped") == "true"
		items, err := db.GetAllLineItems(r.Context(), pool, int(userID), ungroupedOnly)
		if err != nil {
			log.Printf("ERROR: Failed to get line items for user %d: %v", userID, err)
			http.Error(w, "failed to get line items", http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []models.LineItem{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(items)
	}
}

func UpdateLineItem(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		lineItemID := chi.URLParam(r, "line_item_id")
		var req lineItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update line item request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		li, msg := req.toLineItem()
		if msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		li.ID = lineItemID
		li.UserID = int(userID)
		updated, err := db.UpdateLineItem(r.Context(), pool, li)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, "line item not found", http.StatusNotFound)
				return
			}
			log.Printf("ERROR: Failed to update line item %s for user %d: %v", lineItemID, userID, err)
			http.Error(w, "failed to update line item", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Updated line item %s for user %d", updated.ID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteLineItem(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		lineItemID := chi.URLParam(r, "line_item_id")
		if err := db.DeleteLineItem(r.Context(), pool, int(userID), lineItemID); err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, "line item not found", http.StatusNotFound)
				return
			}
			log.Printf("ERROR: Failed to delete line item %s for user %d: %v", lineItemID, userID, err)
			http.Error(w, "failed to delete line item", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Deleted line item %s for user %d", lineItemID, userID)
		w.WriteHeader(http.StatusNoContent)
	}
}
