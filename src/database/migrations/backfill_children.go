package migrations

import (
	"fmt"

	"gorm.io/gorm"

	"strategydesk/src/model"
)

const backfillBatchSize = 200

// backfillStrategyPerformance gives every strategy created before the
// performance table existed its zeroed counters row.
func backfillStrategyPerformance(db *gorm.DB) error {
	ids, err := strategiesMissing(db, &model.StrategyPerformance{})
	if err != nil {
		return fmt.Errorf("find strategies without performance: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	rows := make([]*model.StrategyPerformance, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.NewStrategyPerformance(id))
	}

	return db.CreateInBatches(rows, backfillBatchSize).Error
}

// backfillStrategyRiskDefaults inserts the default risk settings for
// strategies that never had a risk row.
func backfillStrategyRiskDefaults(db *gorm.DB) error {
	ids, err := strategiesMissing(db, &model.StrategyRiskManagement{})
	if err != nil {
		return fmt.Errorf("find strategies without risk management: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	rows := make([]*model.StrategyRiskManagement, 0, len(ids))
	for _, id := range ids {
		var defaults model.RiskManagementInput
		rows = append(rows, defaults.Row(id))
	}

	return db.CreateInBatches(rows, backfillBatchSize).Error
}

func strategiesMissing(db *gorm.DB, child interface{}) ([]string, error) {
	var ids []string
	err := db.Model(&model.Strategy{}).
		Where("id NOT IN (?)", db.Model(child).Select("strategy_id")).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}
