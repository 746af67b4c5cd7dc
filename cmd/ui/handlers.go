package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"crypto-dashboard-go/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log   *zap.Logger
	db    *gorm.DB
	limit int
}

// NewAPIHandler creates a new APIHandler. limit caps the snapshot list size.
func NewAPIHandler(log *zap.Logger, db *gorm.DB, limit int) *APIHandler {
	if limit <= 0 {
		limit = 50
	}
	return &APIHandler{log: log, db: db, limit: limit}
}

// SnapshotsHandler returns recent snapshots, newest first.
func (h *APIHandler) SnapshotsHandler(w http.ResponseWriter, r *http.Request) {
	var snapshots []models.Snapshot
	if err := h.db.Order("id desc").Limit(h.limit).Find(&snapshots).Error; err != nil {
		h.log.Error("Failed to get snapshots from database", zap.Error(err))
		http.Error(w, "Failed to get snapshots", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshots)
}

// LatestHandler returns the most recent snapshot with its per-holding rows.
func (h *APIHandler) LatestHandler(w http.ResponseWriter, r *http.Request) {
	var snapshot models.Snapshot
	err := h.db.Preload("Positions").Order("id desc").First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "No snapshots recorded yet", http.StatusNotFound)
			return
		}
		h.log.Error("Failed to get latest snapshot", zap.Error(err))
		http.Error(w, "Failed to get latest snapshot", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

// StatsDetail holds the portfolio value movement over a period.
type StatsDetail struct {
	Snapshots     int64   `json:"snapshots"`
	FirstValue    float64 `json:"first_value"`
	LastValue     float64 `json:"last_value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// StatisticsResponse is the structure for the /api/statistics endpoint.
type StatisticsResponse struct {
	Since24h StatsDetail `json:"since_24h"`
	AllTime  StatsDetail `json:"all_time"`
}

// StatisticsHandler derives value movement from the stored snapshots.
func (h *APIHandler) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	var snapshots []models.Snapshot
	if err := h.db.Order("id asc").Find(&snapshots).Error; err != nil {
		h.log.Error("Failed to get snapshots for statistics", zap.Error(err))
		http.Error(w, "Failed to calculate statistics", http.StatusInternalServerError)
		return
	}

	since24h := time.Now().Add(-24 * time.Hour)
	var recent []models.Snapshot
	for _, snapshot := range snapshots {
		if snapshot.CreatedAt.After(since24h) {
			recent = append(recent, snapshot)
		}
	}

	response := StatisticsResponse{
		Since24h: summarize(recent),
		AllTime:  summarize(snapshots),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// summarize compares the first and last snapshot of a period.
func summarize(snapshots []models.Snapshot) StatsDetail {
	detail := StatsDetail{Snapshots: int64(len(snapshots))}
	if len(snapshots) == 0 {
		return detail
	}

	detail.FirstValue = snapshots[0].TotalMarketValue
	detail.LastValue = snapshots[len(snapshots)-1].TotalMarketValue
	detail.Change = detail.LastValue - detail.FirstValue
	if detail.FirstValue != 0 {
		detail.ChangePercent = detail.Change / detail.FirstValue * 100
	}
	return detail
}
