// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package waterapi

import (
	"context"
	"net/http"
)

// Probe issues one bounded-timeout GET against the health endpoint and
// reports whether the remote service is reachable.
//
// Classification rule: any HTTP response counts as reachable, including
// 4xx/5xx — the remote process is up and answering even if the call
// itself failed for business reasons. Only a transport-level failure
// (connection refused, DNS failure, timeout) counts as unreachable.
//
// The probe bypasses the retry policy: it is a point-in-time question,
// not a call worth re-asking.
func (c *Client) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.HTTP.BaseURL+"/health", nil)
	if err != nil {
		return false
	}

	httpc := c.HTTP.GetClient()
	resp, err := httpc.Do(req)
	if err != nil {
		c.logger.Debug("connectivity probe failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	c.logger.Debug("connectivity probe answered", "status", resp.StatusCode)
	return true
}
