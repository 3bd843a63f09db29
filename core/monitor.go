package core

import "time"

// MonitorStatsProperty property store key holding the last persisted
// monitor statistics
const MonitorStatsProperty = "monitor_stats"

// MonitorStats cumulative statistics of the position monitor
type MonitorStats struct {
	Cycles             int64     `json:"cycles"`
	PositionsChecked   int64     `json:"positions_checked"`
	AlertsWarning      int64     `json:"alerts_warning"`
	AlertsCritical     int64     `json:"alerts_critical"`
	AlertsLiquidatable int64     `json:"alerts_liquidatable"`
	Errors             int64     `json:"errors"`
	LastCycleAt        time.Time `json:"last_cycle_at"`
}

// CountAlert bumps the counter matching the severity
func (s *MonitorStats) CountAlert(severity Severity) {
	switch severity {
	case SeverityWarning:
		s.AlertsWarning++
	case SeverityCritical:
		s.AlertsCritical++
	case SeverityLiquidatable:
		s.AlertsLiquidatable++
	}
}
