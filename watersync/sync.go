// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package watersync

import (
	"context"
	"fmt"

	"github.com/WaterWise-GlobalSolution/go-watersync/waterstore"
)

// SyncData replays the pending offline registrations against the remote
// service and refreshes the current producer's property data. A no-op
// when offline.
//
// Replay runs in queue (FIFO) order and each item's outcome is logged
// independently. The queue is cleared only after all items have been
// attempted; an item that still fails while the service is reachable is
// dropped, with a warning carrying its id and email.
func (c *Client) SyncData(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if !c.CheckConnection(ctx) {
		c.logger.Info("sync skipped, remote service unreachable")
		return nil
	}

	items, err := c.store.PendingSyncItems()
	if err != nil {
		return err
	}

	replayed := 0
	for i := range items {
		if err := c.replayPendingItem(ctx, &items[i]); err != nil {
			c.logger.Warn("pending registration replay failed, item dropped",
				"item_id", items[i].ID, "email", items[i].Producer.Email, "error", err)
			continue
		}
		replayed++
	}
	if len(items) > 0 {
		if err := c.store.ClearPendingSync(); err != nil {
			return err
		}
		c.logger.Info("pending sync queue processed",
			"attempted", len(items), "replayed", replayed)
	}

	if current := c.Producer(); current != nil {
		if err := c.loadUserData(ctx, current.ID); err != nil {
			c.logger.Warn("failed to refresh user data during sync", "error", err)
			c.loadOfflineData()
		}
	}
	return nil
}

// replayPendingItem runs the two-step create for one queued offline
// registration and reconciles local records with the remote ids.
func (c *Client) replayPendingItem(ctx context.Context, item *waterstore.PendingSyncItem) error {
	created, err := c.api.CreateProducer(ctx, &item.Producer)
	if err != nil {
		return err
	}

	propReq := item.Property
	propReq.ProducerID = created.ID
	property, err := c.api.CreateProperty(ctx, &propReq)
	if err != nil {
		c.logger.Warn("replay created producer but property create failed, remote producer orphaned",
			"producer_id", created.ID, "error", err)
		return fmt.Errorf("%w: %v", ErrPartialRegistration, err)
	}

	// The offline account keeps serving logins; swap its snapshot to the
	// remote records so those logins carry the remote ids from now on.
	if err := c.store.UpdateOfflineAccount(item.Producer.Email, *created, *property); err != nil {
		return err
	}

	if current := c.Producer(); current != nil && current.ID == item.LocalProducerID {
		if err := c.commitSession(created, property); err != nil {
			return err
		}
	}

	c.logger.Info("pending registration replayed",
		"local_producer_id", item.LocalProducerID,
		"remote_producer_id", created.ID,
		"remote_property_id", property.ID)
	return nil
}
