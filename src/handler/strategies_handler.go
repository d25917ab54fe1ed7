package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	logger "github.com/sirupsen/logrus"

	"strategydesk/src/exceptions"
	"strategydesk/src/model"
	"strategydesk/src/repository"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type strategyLister interface {
	List(ctx context.Context, filter repository.StrategyFilter) ([]model.StrategyView, error)
}

type strategyFinder interface {
	FindByID(ctx context.Context, id string) (*model.StrategyView, error)
}

type strategyCreator interface {
	Create(ctx context.Context, req *model.CreateStrategyRequest) (string, error)
}

type strategyDeleter interface {
	Delete(ctx context.Context, id string) error
}

type strategyActivator interface {
	SetActive(ctx context.Context, id string, active bool) error
}

// ListStrategiesHandler lists strategies, newest first.
// Supports user_id, strategy_type and limit query parameters.
func ListStrategiesHandler(reader strategyLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter repository.StrategyFilter

		if userID := strings.TrimSpace(r.URL.Query().Get("user_id")); userID != "" {
			filter.UserID = &userID
		}

		if strategyType := strings.TrimSpace(r.URL.Query().Get("strategy_type")); strategyType != "" {
			strategyType = strings.ToUpper(strategyType)
			filter.StrategyType = &strategyType
		}

		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			limit, err := strconv.Atoi(limitParam)
			if err != nil || limit <= 0 {
				writeError(w, http.StatusBadRequest, "Invalid limit", nil)
				return
			}
			filter.Limit = limit
		}

		strategies, err := reader.List(r.Context(), filter)
		if err != nil {
			logger.WithError(err).Error("failed to list strategies")
			writeError(w, http.StatusInternalServerError, "Failed to fetch strategies", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"strategies": strategies,
			"count":      len(strategies),
		})
	}
}

// GetStrategyHandler returns one strategy by its {id} URL parameter.
func GetStrategyHandler(reader strategyFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			writeError(w, http.StatusBadRequest, "Strategy ID is required", nil)
			return
		}

		strategy, err := reader.FindByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrStrategyNotFound) {
				writeError(w, http.StatusNotFound, "Strategy not found", nil)
				return
			}
			logger.WithError(err).WithField("strategy_id", id).Error("failed to fetch strategy")
			writeError(w, http.StatusInternalServerError, "Failed to fetch strategies", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"strategy": strategy})
	}
}

// CreateStrategyHandler persists a strategy with all of its child rows.
func CreateStrategyHandler(store strategyCreator, recorder exceptions.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.CreateStrategyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WithError(err).Warn("invalid create strategy payload")
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		req.Normalize()
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Validation failed", err)
			return
		}

		id, err := store.Create(r.Context(), &req)
		if errors.Is(err, repository.ErrStrategyInvalid) {
			writeError(w, http.StatusBadRequest, "Validation failed", err)
			return
		}
		if err != nil {
			exceptions.Capture(r.Context(), recorder, "handler", "CreateStrategy", "error", err, map[string]interface{}{
				"user_id":       req.UserID,
				"strategy_type": req.StrategyType,
				"name":          req.Name,
			})
			writeError(w, http.StatusInternalServerError, "Failed to create strategy", err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"message":     "Strategy created successfully",
			"strategy_id": id,
		})
	}
}

// DeleteStrategyHandler removes the strategy named by the id query parameter.
func DeleteStrategyHandler(store strategyDeleter, recorder exceptions.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			writeError(w, http.StatusBadRequest, "Strategy ID is required", nil)
			return
		}

		if err := store.Delete(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, repository.ErrStrategyNotFound):
				writeError(w, http.StatusNotFound, "Strategy not found", nil)
			case errors.Is(err, repository.ErrStrategyIDRequired):
				writeError(w, http.StatusBadRequest, "Strategy ID is required", nil)
			default:
				exceptions.Capture(r.Context(), recorder, "handler", "DeleteStrategy", "error", err, map[string]interface{}{
					"strategy_id": id,
				})
				writeError(w, http.StatusInternalServerError, "Failed to delete strategy", err)
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":     "Strategy deleted successfully",
			"strategy_id": id,
		})
	}
}

type updateStatusPayload struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// UpdateStrategyStatusHandler activates or deactivates a strategy.
func UpdateStrategyStatusHandler(store strategyActivator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			writeError(w, http.StatusBadRequest, "Strategy ID is required", nil)
			return
		}

		var payload updateStatusPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
		if err := validate.Struct(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "Validation failed", err)
			return
		}

		if err := store.SetActive(r.Context(), id, *payload.IsActive); err != nil {
			if errors.Is(err, repository.ErrStrategyNotFound) {
				writeError(w, http.StatusNotFound, "Strategy not found", nil)
				return
			}
			logger.WithError(err).WithField("strategy_id", id).Error("failed to update strategy status")
			writeError(w, http.StatusInternalServerError, "Failed to update strategy", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":     "Strategy status updated",
			"strategy_id": id,
			"is_active":   *payload.IsActive,
		})
	}
}

// DefaultListStrategiesHandler wires the handler to the production reader.
func DefaultListStrategiesHandler() http.HandlerFunc {
	return ListStrategiesHandler(repository.NewStrategyReader())
}

func DefaultGetStrategyHandler() http.HandlerFunc {
	return GetStrategyHandler(repository.NewStrategyReader())
}

func DefaultCreateStrategyHandler() http.HandlerFunc {
	return CreateStrategyHandler(repository.NewStrategyRepository(), repository.NewExceptionRepository())
}

func DefaultDeleteStrategyHandler() http.HandlerFunc {
	return DeleteStrategyHandler(repository.NewStrategyRepository(), repository.NewExceptionRepository())
}

func DefaultUpdateStrategyStatusHandler() http.HandlerFunc {
	return UpdateStrategyStatusHandler(repository.NewStrategyRepository())
}
