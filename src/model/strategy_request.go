package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"gorm.io/datatypes"
)

const (
	DefaultStopLossType    = "SL pt"
	DefaultTakeProfitType  = "TP pt"
	DefaultPriceBasis      = "On Price"
	DefaultPositionSize    = "1"
	DefaultSegment         = "INDEX"
	DefaultOrderType       = "MARKET"
	DefaultStartTime       = "09:15"
	DefaultSquareOffTime   = "15:15"
	DefaultNoTradeAfter    = "15:00"
	DefaultAssetType       = "EQUITY"
	DefaultLotSize         = 1
	DefaultMaxTradeCycles  = 1
	defaultWorkingDaysJSON = `{"monday":true,"tuesday":true,"wednesday":true,"thursday":true,"friday":true,"saturday":false,"sunday":false}`
)

var (
	DefaultStopLossValue   = decimal.RequireFromString("2.00")
	DefaultTakeProfitValue = decimal.RequireFromString("4.00")
)

// CreateStrategyRequest is the POST /api/strategies payload.
// Every nested object is optional; absent fields fall back to defaults.
type CreateStrategyRequest struct {
	UserID               string              `json:"user_id" validate:"required"`
	Name                 string              `json:"name" validate:"required"`
	Description          string              `json:"description"`
	StrategyType         StrategyType        `json:"strategy_type" validate:"required"`
	Symbol               string              `json:"symbol"`
	AssetType            string              `json:"asset_type"`
	IsActive             *bool               `json:"is_active"`
	IsPaperTrading       *bool               `json:"is_paper_trading"`
	Config               ConfigInput         `json:"config"`
	RiskManagement       RiskManagementInput `json:"risk_management"`
	ProfitTrailing       ProfitTrailingInput `json:"profit_trailing"`
	StrategySpecificData SpecificDataInput   `json:"strategy_specific_data"`
}

// Numeric fields are typed `any` because the dashboard forms send numbers
// and numeric strings interchangeably.
type ConfigInput struct {
	Symbol           string         `json:"symbol"`
	SymbolName       string         `json:"symbol_name"`
	Segment          string         `json:"segment"`
	LotSize          any            `json:"lot_size"`
	OrderType        string         `json:"order_type"`
	StartTime        string         `json:"start_time"`
	SquareOffTime    string         `json:"square_off_time"`
	WorkingDays      datatypes.JSON `json:"working_days"`
	DailyProfitLimit any            `json:"daily_profit_limit"`
	DailyLossLimit   any            `json:"daily_loss_limit"`
	MaxTradeCycles   any            `json:"max_trade_cycles"`
	NoTradeAfter     string         `json:"no_trade_after"`
}

type RiskManagementInput struct {
	StopLossType      string `json:"stop_loss_type"`
	StopLossValue     any    `json:"stop_loss_value"`
	StopLossOnPrice   string `json:"stop_loss_on_price"`
	TakeProfitType    string `json:"take_profit_type"`
	TakeProfitValue   any    `json:"take_profit_value"`
	TakeProfitOnPrice string `json:"take_profit_on_price"`
	PositionSize      any    `json:"position_size"`
}

type ProfitTrailingInput struct {
	TrailingType         TrailingType `json:"trailing_type" validate:"omitempty,oneof=no_trailing lock_fix_profit trail_profit lock_and_trail"`
	LockFixProfitReach   any          `json:"lock_fix_profit_reach"`
	LockFixProfitAt      any          `json:"lock_fix_profit_at"`
	TrailProfitIncrease  any          `json:"trail_profit_increase"`
	TrailProfitBy        any          `json:"trail_profit_by"`
	LockAndTrailReach    any          `json:"lock_and_trail_reach"`
	LockAndTrailAt       any          `json:"lock_and_trail_at"`
	LockAndTrailIncrease any          `json:"lock_and_trail_increase"`
	LockAndTrailBy       any          `json:"lock_and_trail_by"`
}

// SpecificDataInput carries the union of all subtype payload keys.
// Only the keys of the selected strategy type are persisted.
type SpecificDataInput struct {
	TriggerConfig        datatypes.JSON `json:"trigger_config"`
	OrderLegs            datatypes.JSON `json:"order_legs"`
	AdvanceFeatures      datatypes.JSON `json:"advance_features"`
	FormState            datatypes.JSON `json:"form_state"`
	ChartConfig          datatypes.JSON `json:"chart_config"`
	ConditionBlocks      datatypes.JSON `json:"condition_blocks"`
	SelectedIndicators   datatypes.JSON `json:"selected_indicators"`
	StrikeConfig         datatypes.JSON `json:"strike_config"`
	OptionConfig         datatypes.JSON `json:"option_config"`
	Dependencies         datatypes.JSON `json:"dependencies"`
	EnvironmentVariables datatypes.JSON `json:"environment_variables"`
	ExecutionConfig      datatypes.JSON `json:"execution_config"`
}

// Normalize trims the identifying fields and upper-cases the strategy type.
// It runs before validation so that blank values fail the required checks.
func (r *CreateStrategyRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Name = strings.TrimSpace(r.Name)
	r.StrategyType = StrategyType(strings.ToUpper(strings.TrimSpace(string(r.StrategyType))))
	r.Symbol = strings.TrimSpace(r.Symbol)
}

// StrategyRow builds the parent row from the normalized request.
func (r *CreateStrategyRequest) StrategyRow(id string, now time.Time) *Strategy {
	r.Normalize()

	s := &Strategy{
		ID:             id,
		UserID:         r.UserID,
		Name:           r.Name,
		Description:    r.Description,
		StrategyType:   r.StrategyType,
		Symbol:         r.Symbol,
		AssetType:      stringOr(r.AssetType, DefaultAssetType),
		IsActive:       true,
		IsPaperTrading: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
	if r.IsPaperTrading != nil {
		s.IsPaperTrading = *r.IsPaperTrading
	}
	return s
}

// Row builds the config row. symbol is the parent's symbol, used when the
// config does not name its own instrument.
func (c *ConfigInput) Row(strategyID, symbol string) *StrategyConfig {
	cfgSymbol := stringOr(c.Symbol, symbol)

	workingDays := jsonOrNil(c.WorkingDays)
	if workingDays == nil {
		workingDays = datatypes.JSON(defaultWorkingDaysJSON)
	}

	return &StrategyConfig{
		StrategyID:       strategyID,
		Symbol:           cfgSymbol,
		SymbolName:       stringOr(c.SymbolName, cfgSymbol),
		Segment:          stringOr(c.Segment, DefaultSegment),
		LotSize:          intOr(c.LotSize, DefaultLotSize),
		OrderType:        stringOr(c.OrderType, DefaultOrderType),
		StartTime:        stringOr(c.StartTime, DefaultStartTime),
		SquareOffTime:    stringOr(c.SquareOffTime, DefaultSquareOffTime),
		WorkingDays:      workingDays,
		DailyProfitLimit: decimalOr(c.DailyProfitLimit, decimal.Zero),
		DailyLossLimit:   decimalOr(c.DailyLossLimit, decimal.Zero),
		MaxTradeCycles:   intOr(c.MaxTradeCycles, DefaultMaxTradeCycles),
		NoTradeAfter:     stringOr(c.NoTradeAfter, DefaultNoTradeAfter),
	}
}

func (rm *RiskManagementInput) Row(strategyID string) *StrategyRiskManagement {
	positionSize := DefaultPositionSize
	if rm.PositionSize != nil {
		if s := strings.TrimSpace(cast.ToString(rm.PositionSize)); s != "" {
			positionSize = s
		}
	}

	return &StrategyRiskManagement{
		StrategyID:        strategyID,
		StopLossType:      stringOr(rm.StopLossType, DefaultStopLossType),
		StopLossValue:     decimalOr(rm.StopLossValue, DefaultStopLossValue),
		StopLossOnPrice:   stringOr(rm.StopLossOnPrice, DefaultPriceBasis),
		TakeProfitType:    stringOr(rm.TakeProfitType, DefaultTakeProfitType),
		TakeProfitValue:   decimalOr(rm.TakeProfitValue, DefaultTakeProfitValue),
		TakeProfitOnPrice: stringOr(rm.TakeProfitOnPrice, DefaultPriceBasis),
		PositionSize:      positionSize,
	}
}

func (pt *ProfitTrailingInput) Row(strategyID string) *StrategyProfitTrailing {
	row := &StrategyProfitTrailing{
		StrategyID:           strategyID,
		TrailingType:         pt.TrailingType,
		LockFixProfitReach:   nullDecimal(pt.LockFixProfitReach),
		LockFixProfitAt:      nullDecimal(pt.LockFixProfitAt),
		TrailProfitIncrease:  nullDecimal(pt.TrailProfitIncrease),
		TrailProfitBy:        nullDecimal(pt.TrailProfitBy),
		LockAndTrailReach:    nullDecimal(pt.LockAndTrailReach),
		LockAndTrailAt:       nullDecimal(pt.LockAndTrailAt),
		LockAndTrailIncrease: nullDecimal(pt.LockAndTrailIncrease),
		LockAndTrailBy:       nullDecimal(pt.LockAndTrailBy),
	}
	row.Normalize()
	return row
}

// Details builds the subtype row for strategyType, or nil when the type has
// no subtype table.
func (d *SpecificDataInput) Details(strategyID string, strategyType StrategyType) StrategyDetails {
	switch strategyType {
	case StrategyTypeTimeBased:
		return &TimeBasedStrategy{
			StrategyID:      strategyID,
			TriggerConfig:   jsonOrNil(d.TriggerConfig),
			OrderLegs:       jsonOrNil(d.OrderLegs),
			AdvanceFeatures: jsonOrNil(d.AdvanceFeatures),
			FormState:       jsonOrNil(d.FormState),
		}
	case StrategyTypeIndicatorBased:
		return &IndicatorBasedStrategy{
			StrategyID:         strategyID,
			ChartConfig:        jsonOrNil(d.ChartConfig),
			ConditionBlocks:    jsonOrNil(d.ConditionBlocks),
			SelectedIndicators: jsonOrNil(d.SelectedIndicators),
			StrikeConfig:       jsonOrNil(d.StrikeConfig),
			FormState:          jsonOrNil(d.FormState),
			OptionConfig:       jsonOrNil(d.OptionConfig),
		}
	case StrategyTypeProgramming:
		return &ProgrammingStrategy{
			StrategyID:           strategyID,
			Dependencies:         jsonOrNil(d.Dependencies),
			EnvironmentVariables: jsonOrNil(d.EnvironmentVariables),
			ExecutionConfig:      jsonOrNil(d.ExecutionConfig),
		}
	default:
		return nil
	}
}

func stringOr(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}

// intOr reads v as a base-10 number and drops any fraction.
func intOr(v any, def int) int {
	d, ok := parseDecimal(v)
	if !ok {
		return def
	}
	return int(d.IntPart())
}

func decimalOr(v any, def decimal.Decimal) decimal.Decimal {
	if d, ok := parseDecimal(v); ok {
		return d
	}
	return def
}

func nullDecimal(v any) decimal.NullDecimal {
	d, ok := parseDecimal(v)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

func parseDecimal(v any) (decimal.Decimal, bool) {
	if v == nil {
		return decimal.Zero, false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return decimal.Zero, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
