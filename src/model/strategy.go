package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func init() {
	// The dashboard reads numeric fields as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type StrategyType string

const (
	StrategyTypeTimeBased      StrategyType = "TIME_BASED"
	StrategyTypeIndicatorBased StrategyType = "INDICATOR_BASED"
	StrategyTypeProgramming    StrategyType = "PROGRAMMING"

	// Legacy types are kept for display only and have no subtype table.
	StrategyTypeIntraday   StrategyType = "INTRADAY"
	StrategyTypeSwing      StrategyType = "SWING"
	StrategyTypeScalping   StrategyType = "SCALPING"
	StrategyTypePositional StrategyType = "POSITIONAL"
)

// HasSubtype reports whether strategies of this type own a row in one of the subtype tables.
func (t StrategyType) HasSubtype() bool {
	switch t {
	case StrategyTypeTimeBased, StrategyTypeIndicatorBased, StrategyTypeProgramming:
		return true
	default:
		return false
	}
}

// Strategy is the parent row of a strategy aggregate.
// The four 1:1 children share its ID as their primary key. The subtype row
// is not an association: it lives in exactly one of the subtype tables,
// selected by StrategyType.
type Strategy struct {
	ID             string       `gorm:"primaryKey;size:64" json:"id"`
	UserID         string       `gorm:"size:100;not null;index" json:"user_id"`
	Name           string       `gorm:"size:255;not null" json:"name"`
	Description    string       `gorm:"type:text" json:"description"`
	StrategyType   StrategyType `gorm:"size:30;not null;index" json:"strategy_type"`
	Symbol         string       `gorm:"size:50" json:"symbol"`
	AssetType      string       `gorm:"size:30" json:"asset_type"`
	IsActive       bool         `gorm:"not null" json:"is_active"`
	IsPaperTrading bool         `gorm:"not null" json:"is_paper_trading"`
	CreatedAt      time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	Config         *StrategyConfig         `gorm:"foreignKey:StrategyID" json:"-"`
	RiskManagement *StrategyRiskManagement `gorm:"foreignKey:StrategyID" json:"-"`
	ProfitTrailing *StrategyProfitTrailing `gorm:"foreignKey:StrategyID" json:"-"`
	Performance    *StrategyPerformance    `gorm:"foreignKey:StrategyID" json:"-"`
}

func (Strategy) TableName() string { return "strategies" }

// StrategyConfig holds instrument selection and the trading window.
type StrategyConfig struct {
	StrategyID       string          `gorm:"primaryKey;size:64" json:"strategy_id"`
	Symbol           string          `gorm:"size:50" json:"symbol"`
	SymbolName       string          `gorm:"size:100" json:"symbol_name"`
	Segment          string          `gorm:"size:30" json:"segment"`
	LotSize          int             `json:"lot_size"`
	OrderType        string          `gorm:"size:30" json:"order_type"`
	StartTime        string          `gorm:"size:10" json:"start_time"`
	SquareOffTime    string          `gorm:"size:10" json:"square_off_time"`
	WorkingDays      datatypes.JSON  `gorm:"type:text" json:"working_days"`
	DailyProfitLimit decimal.Decimal `gorm:"type:decimal(14,2)" json:"daily_profit_limit"`
	DailyLossLimit   decimal.Decimal `gorm:"type:decimal(14,2)" json:"daily_loss_limit"`
	MaxTradeCycles   int             `json:"max_trade_cycles"`
	NoTradeAfter     string          `gorm:"size:10" json:"no_trade_after"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (StrategyConfig) TableName() string { return "strategy_config" }

type StrategyRiskManagement struct {
	StrategyID        string          `gorm:"primaryKey;size:64" json:"strategy_id"`
	StopLossType      string          `gorm:"size:20" json:"stop_loss_type"`
	StopLossValue     decimal.Decimal `gorm:"type:decimal(14,2)" json:"stop_loss_value"`
	StopLossOnPrice   string          `gorm:"size:30" json:"stop_loss_on_price"`
	TakeProfitType    string          `gorm:"size:20" json:"take_profit_type"`
	TakeProfitValue   decimal.Decimal `gorm:"type:decimal(14,2)" json:"take_profit_value"`
	TakeProfitOnPrice string          `gorm:"size:30" json:"take_profit_on_price"`
	PositionSize      string          `gorm:"size:20" json:"position_size"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (StrategyRiskManagement) TableName() string { return "strategy_risk_management" }

type TrailingType string

const (
	TrailingNone          TrailingType = "no_trailing"
	TrailingLockFixProfit TrailingType = "lock_fix_profit"
	TrailingTrailProfit   TrailingType = "trail_profit"
	TrailingLockAndTrail  TrailingType = "lock_and_trail"
)

// StrategyProfitTrailing stores one trailing mode plus its thresholds.
// Thresholds that the mode does not use are NULL.
type StrategyProfitTrailing struct {
	StrategyID           string              `gorm:"primaryKey;size:64" json:"strategy_id"`
	TrailingType         TrailingType        `gorm:"size:30;not null" json:"trailing_type"`
	LockFixProfitReach   decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"lock_fix_profit_reach"`
	LockFixProfitAt      decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"lock_fix_profit_at"`
	TrailProfitIncrease  decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"trail_profit_increase"`
	TrailProfitBy        decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"trail_profit_by"`
	LockAndTrailReach    decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"lock_and_trail_reach"`
	LockAndTrailAt       decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"lock_and_trail_at"`
	LockAndTrailIncrease decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"lock_and_trail_increase"`
	LockAndTrailBy       decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"lock_and_trail_by"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

func (StrategyProfitTrailing) TableName() string { return "strategy_profit_trailing" }

// Normalize clears every threshold that does not belong to the selected mode.
func (p *StrategyProfitTrailing) Normalize() {
	if p.TrailingType == "" {
		p.TrailingType = TrailingNone
	}

	null := decimal.NullDecimal{}
	keepLockFix := p.TrailingType == TrailingLockFixProfit
	keepTrail := p.TrailingType == TrailingTrailProfit
	keepLockAndTrail := p.TrailingType == TrailingLockAndTrail

	if !keepLockFix {
		p.LockFixProfitReach, p.LockFixProfitAt = null, null
	}
	if !keepTrail {
		p.TrailProfitIncrease, p.TrailProfitBy = null, null
	}
	if !keepLockAndTrail {
		p.LockAndTrailReach, p.LockAndTrailAt = null, null
		p.LockAndTrailIncrease, p.LockAndTrailBy = null, null
	}
}

// PerformanceCounters are the running statistics of a strategy.
// They are zero at creation and only mutated by trade execution.
type PerformanceCounters struct {
	TotalTrades          int             `gorm:"not null" json:"total_trades"`
	WinningTrades        int             `gorm:"not null" json:"winning_trades"`
	LosingTrades         int             `gorm:"not null" json:"losing_trades"`
	TotalPnL             decimal.Decimal `gorm:"column:total_pnl;type:decimal(16,2)" json:"total_pnl"`
	MaxDrawdown          decimal.Decimal `gorm:"type:decimal(16,2)" json:"max_drawdown"`
	SharpeRatio          float64         `gorm:"not null" json:"sharpe_ratio"`
	WinRate              float64         `gorm:"not null" json:"win_rate"`
	AvgWin               decimal.Decimal `gorm:"type:decimal(16,2)" json:"avg_win"`
	AvgLoss              decimal.Decimal `gorm:"type:decimal(16,2)" json:"avg_loss"`
	ProfitFactor         float64         `gorm:"not null" json:"profit_factor"`
	MaxConsecutiveLosses int             `gorm:"not null" json:"max_consecutive_losses"`
	TotalRuntimeHours    float64         `gorm:"not null" json:"total_runtime_hours"`
	AvgTradeDuration     float64         `gorm:"not null" json:"avg_trade_duration"`
	MaxPositionSize      float64         `gorm:"not null" json:"max_position_size"`
	MaxLoss              decimal.Decimal `gorm:"type:decimal(16,2)" json:"max_loss"`
	MaxProfit            decimal.Decimal `gorm:"type:decimal(16,2)" json:"max_profit"`
}

type StrategyPerformance struct {
	StrategyID string `gorm:"primaryKey;size:64" json:"strategy_id"`
	PerformanceCounters
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StrategyPerformance) TableName() string { return "strategy_performance" }

// NewStrategyPerformance returns the all-zero performance row of a new strategy.
func NewStrategyPerformance(strategyID string) *StrategyPerformance {
	return &StrategyPerformance{StrategyID: strategyID}
}
