// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package watersync

import (
	"context"

	"github.com/WaterWise-GlobalSolution/go-watersync/waterapi"
)

// fallbackLevels is the built-in copy of the soil degradation reference
// set, used when the remote service cannot be reached. The set is fixed
// at five ordinal levels.
var fallbackLevels = []waterapi.DegradationLevel{
	{ID: 1, Code: "EXCELLENT", Description: "Excellent",
		CorrectiveActions: "Maintain vegetation cover and current management practices."},
	{ID: 2, Code: "GOOD", Description: "Good",
		CorrectiveActions: "Rotate crops and monitor moisture retention through the dry season."},
	{ID: 3, Code: "MODERATE", Description: "Moderate",
		CorrectiveActions: "Introduce cover crops and reduce tillage to rebuild organic matter."},
	{ID: 4, Code: "DEGRADED", Description: "Degraded",
		CorrectiveActions: "Apply soil correction, contour planting and controlled grazing."},
	{ID: 5, Code: "CRITICAL", Description: "Critical",
		CorrectiveActions: "Suspend intensive use; terracing, replanting and professional soil recovery plan."},
}

// FallbackDegradationLevels returns the built-in 1..5 reference set.
func FallbackDegradationLevels() []waterapi.DegradationLevel {
	out := make([]waterapi.DegradationLevel, len(fallbackLevels))
	copy(out, fallbackLevels)
	return out
}

// DegradationLevels returns the soil degradation reference set, from
// the remote service when reachable and from the built-in fallback copy
// otherwise.
func (c *Client) DegradationLevels(ctx context.Context) []waterapi.DegradationLevel {
	if c.Online() {
		page, err := c.api.ListDegradationLevels(ctx, 1, len(fallbackLevels))
		if err == nil && len(page.Items) > 0 {
			return page.Items
		}
		if err != nil {
			c.logger.Warn("failed to fetch degradation levels, using fallback set", "error", err)
		}
	}
	return FallbackDegradationLevels()
}

// degradationLabel maps a level id to its human label.
func degradationLabel(id int) string {
	for _, level := range fallbackLevels {
		if level.ID == id {
			return level.Description
		}
	}
	return "Unknown"
}
