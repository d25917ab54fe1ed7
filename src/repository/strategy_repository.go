package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"strategydesk/src/database"
	"strategydesk/src/model"
	"strategydesk/src/utils"
)

var (
	ErrStrategyNotFound   = errors.New("strategy not found")
	ErrStrategyIDRequired = errors.New("strategy id is required")
	ErrStrategyInvalid    = errors.New("strategy user_id, name and strategy_type are required")
)

// StrategyRepository owns the write path of the strategy aggregate.
// Every write runs in one transaction on one pooled connection.
type StrategyRepository struct {
	db    *gorm.DB
	now   func() time.Time
	newID func(time.Time) string
}

// NewStrategyRepository creates a repository on the main read/write database.
func NewStrategyRepository() *StrategyRepository {
	logger.WithField("component", "StrategyRepository").
		Info("Creating new StrategyRepository with MainDB")

	return NewStrategyRepositoryWithDB(database.MainDB)
}

// NewStrategyRepositoryWithDB creates a repository on a specific *gorm.DB.
func NewStrategyRepositoryWithDB(db *gorm.DB) *StrategyRepository {
	return &StrategyRepository{
		db:    db,
		now:   time.Now,
		newID: utils.NewStrategyID,
	}
}

type insertStep struct {
	table string
	row   interface{}
}

// Create inserts the parent row, its four children and the subtype row
// selected by the strategy type, all or nothing. It returns the new id.
func (r *StrategyRepository) Create(
	ctx context.Context,
	req *model.CreateStrategyRequest,
) (string, error) {

	now := r.now()
	id := r.newID(now)

	strategy := req.StrategyRow(id, now)
	if strategy.UserID == "" || strategy.Name == "" || strategy.StrategyType == "" {
		return "", ErrStrategyInvalid
	}

	steps := []insertStep{
		{table: "strategies", row: strategy},
		{table: "strategy_config", row: req.Config.Row(id, strategy.Symbol)},
		{table: "strategy_risk_management", row: req.RiskManagement.Row(id)},
		{table: "strategy_profit_trailing", row: req.ProfitTrailing.Row(id)},
	}
	if details := req.StrategySpecificData.Details(id, strategy.StrategyType); details != nil {
		steps = append(steps, insertStep{table: tableOf(details), row: details})
	}
	steps = append(steps, insertStep{table: "strategy_performance", row: model.NewStrategyPerformance(id)})

	logger.WithFields(map[string]interface{}{
		"repo":          "StrategyRepository",
		"op":            "Create",
		"strategy_id":   id,
		"user_id":       strategy.UserID,
		"strategy_type": strategy.StrategyType,
		"statements":    len(steps),
	}).Debug("Creating strategy")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, step := range steps {
			if err := tx.Omit(clause.Associations).Create(step.row).Error; err != nil {
				return fmt.Errorf("insert into %s: %w", step.table, err)
			}
		}
		return nil
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "StrategyRepository",
			"op":          "Create",
			"strategy_id": id,
		}).WithError(err).Error("Failed to create strategy, transaction rolled back")

		return "", err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "StrategyRepository",
		"op":          "Create",
		"strategy_id": id,
	}).Info("Strategy created successfully")

	return id, nil
}

// Delete removes the strategy and every child row, children first.
// It returns ErrStrategyNotFound, with nothing deleted, when the parent row
// does not exist.
func (r *StrategyRepository) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrStrategyIDRequired
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "StrategyRepository",
		"op":          "Delete",
		"strategy_id": id,
	}).Debug("Deleting strategy")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range childDeleteOrder() {
			if err := tx.Where("strategy_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("delete from %s: %w", tableOf(child), err)
			}
		}

		res := tx.Where("id = ?", id).Delete(&model.Strategy{})
		if res.Error != nil {
			return fmt.Errorf("delete from strategies: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStrategyNotFound
		}

		return nil
	})
	if err != nil {
		entry := logger.WithFields(map[string]interface{}{
			"repo":        "StrategyRepository",
			"op":          "Delete",
			"strategy_id": id,
		})
		if errors.Is(err, ErrStrategyNotFound) {
			entry.Info("Strategy not found, delete rolled back")
		} else {
			entry.WithError(err).Error("Failed to delete strategy, transaction rolled back")
		}

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "StrategyRepository",
		"op":          "Delete",
		"strategy_id": id,
	}).Info("Strategy deleted successfully")

	return nil
}

// SetActive toggles is_active on the parent row.
func (r *StrategyRepository) SetActive(ctx context.Context, id string, active bool) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrStrategyIDRequired
	}

	res := r.db.WithContext(ctx).
		Model(&model.Strategy{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": r.now(),
		})

	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "StrategyRepository",
			"op":          "SetActive",
			"strategy_id": id,
		}).WithError(res.Error).Error("Failed to update strategy status")

		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStrategyNotFound
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "StrategyRepository",
		"op":          "SetActive",
		"strategy_id": id,
		"is_active":   active,
	}).Info("Strategy status updated")

	return nil
}

// childDeleteOrder lists the subtype tables, then the common children.
// Deleting from a subtype table that does not apply is a no-op.
func childDeleteOrder() []interface{} {
	children := make([]interface{}, 0, 7)
	for _, subtype := range model.SubtypeModels() {
		children = append(children, subtype)
	}
	return append(children,
		&model.StrategyConfig{},
		&model.StrategyRiskManagement{},
		&model.StrategyProfitTrailing{},
		&model.StrategyPerformance{},
	)
}

type tabler interface {
	TableName() string
}

func tableOf(row interface{}) string {
	if t, ok := row.(tabler); ok {
		return t.TableName()
	}
	return fmt.Sprintf("%T", row)
}
