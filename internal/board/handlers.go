package board

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/interniverse/backend/internal/db"
	"gorm.io/gorm"
)

// ListListingsHandler returns listings, optionally narrowed by ?school= (SQL
// filter) and ?q= (case-folded substring match on company/position).
func ListListingsHandler(w http.ResponseWriter, r *http.Request) {
	query := db.DB.Model(&Listing{})

	if school := r.URL.Query().Get("school"); school != "" {
		query = query.Where("school = ?", school)
	}

	var listings []Listing
	if err := query.Find(&listings).Error; err != nil {
		http.Error(w, "Failed to fetch listings", http.StatusInternalServerError)
		return
	}

	if q := r.URL.Query().Get("q"); q != "" {
		listings = FilterListings(listings, q)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listings)
}

// GetListingHandler returns a single listing. A missing id is 404, never a
// crash; the absent case is part of the contract.
func GetListingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "listing_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}

	var listing Listing
	if err := db.DB.First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch listing", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listing)
}

func newListingID() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	id := int64(binary.BigEndian.Uint64(buf[:]) &^ (1 << 63))
	if id == 0 {
		id = 1
	}
	return id, nil
}

func CreateListingHandler(w http.ResponseWriter, r *http.Request) {
	var listing Listing

	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}

	if listing.Company == "" || listing.Position == "" {
		http.Error(w, "Company and position are required", http.StatusBadRequest)
		return
	}

	if listing.ID == 0 {
		id, err := newListingID()
		if err != nil {
			http.Error(w, "Failed to add listing", http.StatusInternalServerError)
			return
		}
		listing.ID = id
	}

	if err := db.DB.Create(&listing).Error; err != nil {
		http.Error(w, "Failed to add listing", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(listing)
}

// ListCommentsHandler returns a listing's comments in insertion order.
func ListCommentsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "listing_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}

	var comments []Comment
	if err := db.DB.Where("listing_id = ?", id).
		Order("timestamp ASC, id ASC").
		Find(&comments).Error; err != nil {
		http.Error(w, "Failed to fetch comments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(comments)
}

// CreateCommentHandler inserts a comment against an existing listing. The
// rating must already be in [0,1]; out-of-range values are rejected rather
// than clamped. The timestamp is assigned server-side.
func CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "listing_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}

	var comment Comment
	if err := json.NewDecoder(r.Body).Decode(&comment); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}

	if comment.Content == "" {
		http.Error(w, "Comment content is required", http.StatusBadRequest)
		return
	}
	if comment.Rating < 0 || comment.Rating > 1 {
		http.Error(w, "Rating must be between 0 and 1", http.StatusBadRequest)
		return
	}
	if comment.Author == "" {
		comment.Author = "Guest"
	}

	var listing Listing
	if err := db.DB.First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch listing", http.StatusInternalServerError)
		return
	}

	comment.ListingID = id
	comment.Timestamp = time.Now().UnixMilli()

	if err := db.DB.Create(&comment).Error; err != nil {
		http.Error(w, "Failed to add comment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(comment)
}

type RatingSummary struct {
	Count     int      `json:"count"`
	Average   *float64 `json:"average,omitempty"`
	StarLabel *float64 `json:"star_label,omitempty"`
	Stars     [5]bool  `json:"stars"`
}

// RatingHandler aggregates a listing's comment ratings for display. With no
// comments the average and label are omitted entirely so the client renders a
// placeholder instead of NaN.
func RatingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "listing_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}

	var comments []Comment
	if err := db.DB.Where("listing_id = ?", id).Find(&comments).Error; err != nil {
		http.Error(w, "Failed to fetch comments", http.StatusInternalServerError)
		return
	}

	summary := RatingSummary{Count: len(comments)}
	if avg, ok := AverageRating(comments); ok {
		label := StarLabel(avg)
		summary.Average = &avg
		summary.StarLabel = &label
		summary.Stars = Stars(avg)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
