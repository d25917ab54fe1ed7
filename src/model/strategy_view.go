package model

// StrategyView is the denormalized shape the dashboard pages consume.
type StrategyView struct {
	Strategy
	WorkingDays    any                     `json:"working_days"`
	Details        map[string]any          `json:"details"`
	RiskManagement *StrategyRiskManagement `json:"risk_management"`
	Config         *ConfigView             `json:"config"`
	ProfitTrailing *StrategyProfitTrailing `json:"profit_trailing"`
	Performance    PerformanceCounters     `json:"performance"`
}

// ConfigView replaces the raw working_days text with its decoded value.
type ConfigView struct {
	*StrategyConfig
	WorkingDays any `json:"working_days"`
}

// NewStrategyView assembles the view of s. Missing children degrade to null,
// and a missing performance row reads as all-zero counters.
func NewStrategyView(s *Strategy, details StrategyDetails) StrategyView {
	view := StrategyView{Strategy: *s}

	// A LEFT JOIN miss may scan into an empty struct rather than nil.
	if s.Config != nil && s.Config.StrategyID != "" {
		view.WorkingDays = DecodeJSONColumn(s.Config.WorkingDays)
		view.Config = &ConfigView{
			StrategyConfig: s.Config,
			WorkingDays:    view.WorkingDays,
		}
	}
	if s.RiskManagement != nil && s.RiskManagement.StrategyID != "" {
		view.RiskManagement = s.RiskManagement
	}
	if s.ProfitTrailing != nil && s.ProfitTrailing.StrategyID != "" {
		view.ProfitTrailing = s.ProfitTrailing
	}
	if s.Performance != nil && s.Performance.StrategyID != "" {
		view.Performance = s.Performance.PerformanceCounters
	}

	if details != nil {
		view.Details = details.Payload()
	}

	return view
}
