package model

import (
	"bytes"
	"encoding/json"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// StrategyDetails is the subtype row of a strategy.
// The concrete type is one of *TimeBasedStrategy, *IndicatorBasedStrategy
// or *ProgrammingStrategy, matching the parent's StrategyType.
type StrategyDetails interface {
	StrategyType() StrategyType
	OwnerID() string
	// Payload returns the decoded JSON columns keyed by column name.
	Payload() map[string]any
}

type TimeBasedStrategy struct {
	StrategyID      string         `gorm:"primaryKey;size:64" json:"strategy_id"`
	TriggerConfig   datatypes.JSON `gorm:"type:text" json:"trigger_config"`
	OrderLegs       datatypes.JSON `gorm:"type:text" json:"order_legs"`
	AdvanceFeatures datatypes.JSON `gorm:"type:text" json:"advance_features"`
	FormState       datatypes.JSON `gorm:"type:text" json:"form_state"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (TimeBasedStrategy) TableName() string { return "time_based_strategies" }

func (*TimeBasedStrategy) StrategyType() StrategyType { return StrategyTypeTimeBased }

func (s *TimeBasedStrategy) OwnerID() string { return s.StrategyID }

func (s *TimeBasedStrategy) Payload() map[string]any {
	return map[string]any{
		"strategy_id":      s.StrategyID,
		"trigger_config":   DecodeJSONColumn(s.TriggerConfig),
		"order_legs":       DecodeJSONColumn(s.OrderLegs),
		"advance_features": DecodeJSONColumn(s.AdvanceFeatures),
		"form_state":       DecodeJSONColumn(s.FormState),
	}
}

type IndicatorBasedStrategy struct {
	StrategyID         string         `gorm:"primaryKey;size:64" json:"strategy_id"`
	ChartConfig        datatypes.JSON `gorm:"type:text" json:"chart_config"`
	ConditionBlocks    datatypes.JSON `gorm:"type:text" json:"condition_blocks"`
	SelectedIndicators datatypes.JSON `gorm:"type:text" json:"selected_indicators"`
	StrikeConfig       datatypes.JSON `gorm:"type:text" json:"strike_config"`
	FormState          datatypes.JSON `gorm:"type:text" json:"form_state"`
	OptionConfig       datatypes.JSON `gorm:"type:text" json:"option_config"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (IndicatorBasedStrategy) TableName() string { return "indicator_based_strategies" }

func (*IndicatorBasedStrategy) StrategyType() StrategyType { return StrategyTypeIndicatorBased }

func (s *IndicatorBasedStrategy) OwnerID() string { return s.StrategyID }

func (s *IndicatorBasedStrategy) Payload() map[string]any {
	return map[string]any{
		"strategy_id":         s.StrategyID,
		"chart_config":        DecodeJSONColumn(s.ChartConfig),
		"condition_blocks":    DecodeJSONColumn(s.ConditionBlocks),
		"selected_indicators": DecodeJSONColumn(s.SelectedIndicators),
		"strike_config":       DecodeJSONColumn(s.StrikeConfig),
		"form_state":          DecodeJSONColumn(s.FormState),
		"option_config":       DecodeJSONColumn(s.OptionConfig),
	}
}

type ProgrammingStrategy struct {
	StrategyID           string         `gorm:"primaryKey;size:64" json:"strategy_id"`
	Dependencies         datatypes.JSON `gorm:"type:text" json:"dependencies"`
	EnvironmentVariables datatypes.JSON `gorm:"type:text" json:"environment_variables"`
	ExecutionConfig      datatypes.JSON `gorm:"type:text" json:"execution_config"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

func (ProgrammingStrategy) TableName() string { return "programming_strategies" }

func (*ProgrammingStrategy) StrategyType() StrategyType { return StrategyTypeProgramming }

func (s *ProgrammingStrategy) OwnerID() string { return s.StrategyID }

func (s *ProgrammingStrategy) Payload() map[string]any {
	return map[string]any{
		"strategy_id":           s.StrategyID,
		"dependencies":          DecodeJSONColumn(s.Dependencies),
		"environment_variables": DecodeJSONColumn(s.EnvironmentVariables),
		"execution_config":      DecodeJSONColumn(s.ExecutionConfig),
	}
}

// SubtypeModels lists one zero value per subtype table, in delete order.
func SubtypeModels() []StrategyDetails {
	return []StrategyDetails{
		&TimeBasedStrategy{},
		&IndicatorBasedStrategy{},
		&ProgrammingStrategy{},
	}
}

// DecodeJSONColumn turns a stored JSON text column into a structured value.
// Empty, NULL and malformed values all decode to nil.
func DecodeJSONColumn(raw datatypes.JSON) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	var out any
	if err := json.Unmarshal(trimmed, &out); err != nil {
		logger.WithError(err).Debug("stored JSON column is malformed, treating as null")
		return nil
	}

	return out
}

// jsonOrNil drops absent and literal-null payloads so they are stored as NULL.
func jsonOrNil(raw datatypes.JSON) datatypes.JSON {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return datatypes.JSON(trimmed)
}
