package database

import (
	"fmt"

	"strategydesk/src/database/migrations"
	"strategydesk/src/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MainDB is the primary read/write database connection used by the application.
var MainDB *gorm.DB

// InitMainDB initializes the main (read/write) database connection and runs migrations.
// This should be called once at application startup (e.g. in main()).
func InitMainDB() error {
	config := GetConfig()
	db, err := Open(config, config.DatabaseURLMain, false)
	if err != nil {
		return err
	}

	// Assign to the global variable only after a successful connection.
	MainDB = db

	logrus.WithField("driver", config.Driver).Info("[database] MainDB connection established")

	if err := Migrate(MainDB); err != nil {
		return err
	}

	logrus.Info("[database] MainDB migrations completed")

	return nil
}

// Models lists every table of the write-side schema.
func Models() []interface{} {
	return []interface{}{
		&model.Strategy{},
		&model.StrategyConfig{},
		&model.StrategyRiskManagement{},
		&model.StrategyProfitTrailing{},
		&model.StrategyPerformance{},
		&model.TimeBasedStrategy{},
		&model.IndicatorBasedStrategy{},
		&model.ProgrammingStrategy{},
		&model.Exception{},
		&migrations.DataMigration{},
	}
}

// Migrate creates or updates the schema and then applies pending data migrations.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run schema migrations: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("failed to run data migrations: %w", err)
	}

	return nil
}
