package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"strategydesk/src/database"
	"strategydesk/src/model"
)

const (
	DefaultStrategyListLimit = 50
	MaxStrategyListLimit     = 500
)

// StrategyFilter narrows List. Nil fields are not filtered on.
type StrategyFilter struct {
	UserID       *string
	StrategyType *string
	Limit        int
}

// StrategyReader serves the dashboard reads. Queries are not wrapped in a
// transaction, so a subtype row deleted between the page query and the
// hydration query simply reads as null details.
type StrategyReader struct {
	db *gorm.DB
}

// NewStrategyReader creates a reader on the read-only database.
func NewStrategyReader() *StrategyReader {
	logger.WithField("component", "StrategyReader").
		Info("Creating new StrategyReader with ReadOnlyDB")

	return &StrategyReader{db: database.ReadOnlyDB}
}

func NewStrategyReaderWithDB(db *gorm.DB) *StrategyReader {
	return &StrategyReader{db: db}
}

// List returns the newest strategies matching filter, fully hydrated.
func (r *StrategyReader) List(ctx context.Context, filter StrategyFilter) ([]model.StrategyView, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultStrategyListLimit
	}
	if limit > MaxStrategyListLimit {
		limit = MaxStrategyListLimit
	}

	logger.WithFields(map[string]interface{}{
		"repo":          "StrategyReader",
		"op":            "List",
		"user_id":       filter.UserID,
		"strategy_type": filter.StrategyType,
		"limit":         limit,
	}).Debug("Listing strategies")

	q := r.joined(ctx)
	if filter.UserID != nil {
		q = q.Where("strategies.user_id = ?", *filter.UserID)
	}
	if filter.StrategyType != nil {
		q = q.Where("strategies.strategy_type = ?", *filter.StrategyType)
	}

	var strategies []model.Strategy
	if err := q.Order("strategies.created_at DESC").Limit(limit).Find(&strategies).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "StrategyReader",
			"op":   "List",
		}).WithError(err).Error("Failed to list strategies")

		return nil, err
	}

	details := r.loadDetails(ctx, strategies)

	views := make([]model.StrategyView, 0, len(strategies))
	for i := range strategies {
		views = append(views, model.NewStrategyView(&strategies[i], details[strategies[i].ID]))
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "StrategyReader",
		"op":          "List",
		"rows_return": len(views),
	}).Info("Strategies listed")

	return views, nil
}

// FindByID returns one hydrated strategy or ErrStrategyNotFound.
func (r *StrategyReader) FindByID(ctx context.Context, id string) (*model.StrategyView, error) {
	if id == "" {
		return nil, ErrStrategyIDRequired
	}

	var strategy model.Strategy
	err := r.joined(ctx).Where("strategies.id = ?", id).Take(&strategy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStrategyNotFound
		}

		logger.WithFields(map[string]interface{}{
			"repo":        "StrategyReader",
			"op":          "FindByID",
			"strategy_id": id,
		}).WithError(err).Error("Failed to fetch strategy")

		return nil, err
	}

	details := r.loadDetails(ctx, []model.Strategy{strategy})
	view := model.NewStrategyView(&strategy, details[strategy.ID])

	return &view, nil
}

// joined selects the parent row with its four common children in one
// LEFT JOIN query.
func (r *StrategyReader) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Strategy{}).
		Joins("Config").
		Joins("RiskManagement").
		Joins("ProfitTrailing").
		Joins("Performance")
}

// loadDetails fetches the subtype rows of strategies, one query per subtype
// table in use. A failed query leaves those details null instead of failing
// the read.
func (r *StrategyReader) loadDetails(ctx context.Context, strategies []model.Strategy) map[string]model.StrategyDetails {
	idsByType := make(map[model.StrategyType][]string)
	for _, s := range strategies {
		if s.StrategyType.HasSubtype() {
			idsByType[s.StrategyType] = append(idsByType[s.StrategyType], s.ID)
		}
	}

	out := make(map[string]model.StrategyDetails, len(strategies))
	db := r.db.WithContext(ctx)

	loaders := map[model.StrategyType]func([]string) error{
		model.StrategyTypeTimeBased: func(ids []string) error {
			return findDetails[model.TimeBasedStrategy](db, ids, out)
		},
		model.StrategyTypeIndicatorBased: func(ids []string) error {
			return findDetails[model.IndicatorBasedStrategy](db, ids, out)
		},
		model.StrategyTypeProgramming: func(ids []string) error {
			return findDetails[model.ProgrammingStrategy](db, ids, out)
		},
	}

	for strategyType, ids := range idsByType {
		if err := loaders[strategyType](ids); err != nil {
			logger.WithFields(map[string]interface{}{
				"repo":          "StrategyReader",
				"op":            "loadDetails",
				"strategy_type": strategyType,
				"strategies":    len(ids),
			}).WithError(err).Warn("Failed to load strategy details, returning them as null")
		}
	}

	return out
}

func findDetails[T any, PT interface {
	*T
	model.StrategyDetails
}](db *gorm.DB, ids []string, out map[string]model.StrategyDetails) error {
	var rows []T
	if err := db.Where("strategy_id IN ?", ids).Find(&rows).Error; err != nil {
		return err
	}
	for i := range rows {
		d := PT(&rows[i])
		out[d.OwnerID()] = d
	}
	return nil
}
