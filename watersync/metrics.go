// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package watersync

import (
	"math"
	"time"
)

// DashboardMetrics is the derived dashboard view for the current
// property: estimated daily water usage and savings scale with area and
// degradation level, efficiency degrades 8 points per level with a
// floor of 60.
type DashboardMetrics struct {
	WaterUsageLiters  int
	SavingsLiters     int
	EfficiencyPercent int
	AlertCount        int
	SoilHealth        string
	ActiveSensors     int
	LastReading       *time.Time
	Offline           bool
}

// DashboardMetrics computes the dashboard view. ErrNoSession when no
// property is current.
func (c *Client) DashboardMetrics() (*DashboardMetrics, error) {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	if c.property == nil {
		return nil, ErrNoSession
	}

	area := c.property.AreaHectares
	level := c.property.DegradationLevelID
	if level < 1 {
		level = 1
	}

	baseUsage := area * 45
	degradationMultiplier := 1 + float64(level-1)*0.2

	efficiency := 95 - (level-1)*8
	if efficiency < 60 {
		efficiency = 60
	}

	metrics := &DashboardMetrics{
		WaterUsageLiters:  int(math.Floor(baseUsage * degradationMultiplier)),
		SavingsLiters:     int(math.Floor(area * 25 * float64(6-level) / 5)),
		EfficiencyPercent: efficiency,
		AlertCount:        len(c.alerts),
		SoilHealth:        degradationLabel(level),
		ActiveSensors:     len(c.sensors),
		Offline:           !c.Online(),
	}
	if len(c.readings) > 0 {
		ts := c.readings[0].Timestamp
		metrics.LastReading = &ts
	}
	return metrics, nil
}
