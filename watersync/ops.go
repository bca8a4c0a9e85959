// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package watersync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/WaterWise-GlobalSolution/go-watersync/waterapi"
	"github.com/WaterWise-GlobalSolution/go-watersync/waterstore"
)

// runWithFallback applies the remote-first policy shared by every
// session operation: probe, attempt the remote path when reachable, and
// degrade to the local path when the remote attempt fails with an error
// the operation considers degradable. A transport error raised after a
// reachable probe still degrades, as a second chance.
func (c *Client) runWithFallback(ctx context.Context, op string,
	remote func(context.Context) error, degrade func(error) bool, local func() error) error {

	if c.CheckConnection(ctx) {
		err := remote(ctx)
		if err == nil {
			return nil
		}
		if degrade == nil || !degrade(err) {
			return err
		}
		c.logger.Warn("remote path failed, degrading to local", "op", op, "error", err)
	}
	if local == nil {
		return fmt.Errorf("%s: %w", op, waterapi.ErrUnreachable)
	}
	return local()
}

// Login authenticates against the remote service when reachable, and
// against the offline-account list otherwise. On success the resulting
// producer (and property, when known) is persisted before returning.
// No partial state is committed on failure.
func (c *Client) Login(ctx context.Context, email, secret string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	email = waterapi.NormalizeEmail(email)

	return c.runWithFallback(ctx, "login",
		func(ctx context.Context) error { return c.remoteLogin(ctx, email, secret) },
		func(err error) bool { return errors.Is(err, waterapi.ErrUnreachable) },
		func() error { return c.offlineLogin(email, secret) },
	)
}

func (c *Client) remoteLogin(ctx context.Context, email, secret string) error {
	res, err := c.api.Login(ctx, email, secret)
	if err != nil {
		return err
	}

	producer := res.Producer
	if producer.CreatedAt.IsZero() {
		producer.CreatedAt = time.Now().UTC()
	}

	c.stateMu.Lock()
	if err := c.store.SaveProducer(&producer); err != nil {
		c.stateMu.Unlock()
		return err
	}
	c.producer = &producer
	c.stateMu.Unlock()

	if res.Token != "" {
		c.api.SetToken(res.Token)
	}
	c.notify(EventSession)
	c.logger.Info("logged in via remote service", "producer_id", producer.ID)

	if err := c.loadUserData(ctx, producer.ID); err != nil {
		c.logger.Warn("failed to load user data after login", "error", err)
		c.loadOfflineData()
	}
	return nil
}

func (c *Client) offlineLogin(email, secret string) error {
	account, ok, err := c.store.FindOfflineAccount(email, secret)
	if err != nil {
		return err
	}
	if !ok {
		return waterapi.ErrInvalidCredentials
	}

	producer := account.Producer
	property := account.Property

	c.stateMu.Lock()
	if err := c.store.SaveProducer(&producer); err != nil {
		c.stateMu.Unlock()
		return err
	}
	if err := c.store.SaveProperty(&property); err != nil {
		c.stateMu.Unlock()
		return err
	}
	c.producer = &producer
	c.property = &property
	c.stateMu.Unlock()

	c.notify(EventSession)
	c.loadOfflineData()
	c.logger.Info("logged in from offline account", "producer_id", producer.ID)
	return nil
}

// Register creates a producer and its property. Online it runs the
// two-step remote create; on partial or total remote failure it falls
// through to the offline path instead of failing, so registration never
// fails solely for lack of connectivity. The only hard failure is
// malformed input, rejected before any network or storage call.
func (c *Client) Register(ctx context.Context, producerIn ProducerInput, propertyIn PropertyInput) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := validateRegistration(producerIn, propertyIn); err != nil {
		return err
	}
	producerIn.Email = waterapi.NormalizeEmail(producerIn.Email)

	return c.runWithFallback(ctx, "register",
		func(ctx context.Context) error { return c.remoteRegister(ctx, producerIn, propertyIn) },
		func(error) bool { return true },
		func() error { return c.offlineRegister(producerIn, propertyIn) },
	)
}

func (c *Client) remoteRegister(ctx context.Context, producerIn ProducerInput, propertyIn PropertyInput) error {
	created, err := c.api.CreateProducer(ctx, &waterapi.CreateProducerRequest{
		FullName: producerIn.FullName,
		TaxID:    producerIn.TaxID,
		Email:    producerIn.Email,
		Phone:    producerIn.Phone,
		Secret:   producerIn.Secret,
	})
	if err != nil {
		return err
	}

	property, err := c.api.CreateProperty(ctx, &waterapi.CreatePropertyRequest{
		ProducerID:         created.ID,
		DegradationLevelID: propertyIn.DegradationLevelID,
		PropertyName:       propertyIn.PropertyName,
		Latitude:           propertyIn.Latitude,
		Longitude:          propertyIn.Longitude,
		AreaHectares:       propertyIn.AreaHectares,
	})
	if err != nil {
		// No compensating delete: the wire API offers none. The remote
		// producer stays orphaned; registration degrades to offline.
		c.logger.Warn("property create failed after producer create, remote producer orphaned",
			"producer_id", created.ID, "error", err)
		return fmt.Errorf("%w: %v", ErrPartialRegistration, err)
	}

	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	if property.CreatedAt.IsZero() {
		property.CreatedAt = time.Now().UTC()
	}

	if err := c.commitSession(created, property); err != nil {
		return err
	}
	c.logger.Info("registered via remote service",
		"producer_id", created.ID, "property_id", property.ID)
	return c.seedSensorData()
}

func (c *Client) offlineRegister(producerIn ProducerInput, propertyIn PropertyInput) error {
	now := time.Now().UTC()
	producer := &waterapi.Producer{
		ID:        waterapi.ID(uuid.NewString()),
		FullName:  producerIn.FullName,
		TaxID:     producerIn.TaxID,
		Email:     producerIn.Email,
		Phone:     producerIn.Phone,
		CreatedAt: now,
	}
	property := &waterapi.Property{
		ID:                 waterapi.ID(uuid.NewString()),
		ProducerID:         producer.ID,
		DegradationLevelID: propertyIn.DegradationLevelID,
		PropertyName:       propertyIn.PropertyName,
		Latitude:           propertyIn.Latitude,
		Longitude:          propertyIn.Longitude,
		AreaHectares:       propertyIn.AreaHectares,
		CreatedAt:          now,
	}

	if err := c.store.AppendOfflineAccount(waterstore.OfflineAccount{
		Email:    producerIn.Email,
		Secret:   producerIn.Secret,
		Producer: *producer,
		Property: *property,
	}); err != nil {
		return err
	}

	if err := c.store.EnqueuePendingSync(waterstore.PendingSyncItem{
		ID:       uuid.NewString(),
		QueuedAt: now,
		Producer: waterapi.CreateProducerRequest{
			FullName: producerIn.FullName,
			TaxID:    producerIn.TaxID,
			Email:    producerIn.Email,
			Phone:    producerIn.Phone,
			Secret:   producerIn.Secret,
		},
		Property: waterapi.CreatePropertyRequest{
			ProducerID:         producer.ID,
			DegradationLevelID: propertyIn.DegradationLevelID,
			PropertyName:       propertyIn.PropertyName,
			Latitude:           propertyIn.Latitude,
			Longitude:          propertyIn.Longitude,
			AreaHectares:       propertyIn.AreaHectares,
		},
		LocalProducerID: producer.ID,
		LocalPropertyID: property.ID,
	}); err != nil {
		return err
	}

	if err := c.commitSession(producer, property); err != nil {
		return err
	}
	c.logger.Info("registered offline, queued for sync", "producer_id", producer.ID)
	return c.seedSensorData()
}

// commitSession persists the producer/property pair and sets the slot
// in one critical section.
func (c *Client) commitSession(producer *waterapi.Producer, property *waterapi.Property) error {
	c.stateMu.Lock()
	if err := c.store.SaveProducer(producer); err != nil {
		c.stateMu.Unlock()
		return err
	}
	if err := c.store.SaveProperty(property); err != nil {
		c.stateMu.Unlock()
		return err
	}
	c.producer = producer
	c.property = property
	c.stateMu.Unlock()

	c.notify(EventSession)
	return nil
}

// UpdateProducer merges partial fields into the current producer.
// Online it attempts the remote update first; offline, or when the
// remote update fails, it merges and persists locally. The operation
// never fails once a current producer exists, except for invalid input
// or a storage fault.
func (c *Client) UpdateProducer(ctx context.Context, req waterapi.UpdateProducerRequest) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	current := c.Producer()
	if current == nil {
		return ErrNoSession
	}
	if req.Email != nil {
		if err := validateEmail(*req.Email); err != nil {
			return err
		}
		normalized := waterapi.NormalizeEmail(*req.Email)
		req.Email = &normalized
	}

	return c.runWithFallback(ctx, "update-producer",
		func(ctx context.Context) error {
			updated, err := c.api.UpdateProducer(ctx, current.ID, &req)
			if err != nil {
				return err
			}
			merged := *updated
			if merged.CreatedAt.IsZero() {
				merged.CreatedAt = current.CreatedAt
			}
			return c.commitProducer(&merged)
		},
		func(error) bool { return true },
		func() error {
			merged := *current
			applyProducerUpdate(&merged, &req)
			return c.commitProducer(&merged)
		},
	)
}

func applyProducerUpdate(p *waterapi.Producer, req *waterapi.UpdateProducerRequest) {
	if req.FullName != nil {
		p.FullName = *req.FullName
	}
	if req.TaxID != nil {
		p.TaxID = *req.TaxID
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
}

func (c *Client) commitProducer(producer *waterapi.Producer) error {
	c.stateMu.Lock()
	if err := c.store.SaveProducer(producer); err != nil {
		c.stateMu.Unlock()
		return err
	}
	c.producer = producer
	c.stateMu.Unlock()

	c.notify(EventSession)
	return nil
}
