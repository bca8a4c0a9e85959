// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// Package watersync is the session and property data synchronizer for
// the WaterWise client. It establishes whether the remote service is
// reachable, authenticates or registers a producer against it, and
// falls back to the durable local store when it is not, keeping exactly
// one canonical in-memory view of the current producer and property
// consistent with whichever store was last written.
package watersync

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/WaterWise-GlobalSolution/go-watersync/waterapi"
	"github.com/WaterWise-GlobalSolution/go-watersync/waterstore"
)

// EventKind identifies what part of the client state changed.
type EventKind string

const (
	EventSession      EventKind = "session"      // producer/property slot changed
	EventSensors      EventKind = "sensors"      // sensor snapshot changed
	EventConnectivity EventKind = "connectivity" // online flag flipped
)

// Event is delivered to subscribers after a state change commits.
type Event struct {
	Kind EventKind
}

// Client owns the canonical session state. Operations are serialized:
// no two synchronizer operations run concurrently against the session
// slot, and the slot together with its accompanying store writes
// commits under one lock so a reader never observes the producer set
// with the property still pending.
type Client struct {
	api    *waterapi.Client
	store  *waterstore.Store
	logger *slog.Logger

	opMu    sync.Mutex   // serializes login/register/update/sync/restore/logout
	stateMu sync.RWMutex // guards the session slot and its store writes

	producer *waterapi.Producer
	property *waterapi.Property
	sensors  []waterapi.SensorDevice
	readings []waterapi.SensorReading
	alerts   []waterapi.Alert

	online int32 // atomic; process-wide reachability flag

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// New creates a synchronizer over the given remote client and local
// store. Nil logger defaults to slog.Default().
func New(api *waterapi.Client, store *waterstore.Store, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:    api,
		store:  store,
		logger: logger,
		subs:   make(map[int]func(Event)),
	}
}

// Subscribe registers a callback invoked after state changes. The
// returned function cancels the subscription. Callbacks run outside the
// client's locks, on the goroutine that performed the operation.
func (c *Client) Subscribe(fn func(Event)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Client) notify(kind EventKind) {
	c.subMu.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(Event{Kind: kind})
	}
}

// Online reports the last known reachability classification.
func (c *Client) Online() bool {
	return atomic.LoadInt32(&c.online) == 1
}

// IsAuthenticated reports whether a producer is currently signed in.
// Derived from the in-memory record, never stored independently.
func (c *Client) IsAuthenticated() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.producer != nil
}

// Producer returns a copy of the current producer, or nil when logged out.
func (c *Client) Producer() *waterapi.Producer {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	if c.producer == nil {
		return nil
	}
	p := *c.producer
	return &p
}

// Property returns a copy of the current property, or nil when absent.
func (c *Client) Property() *waterapi.Property {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	if c.property == nil {
		return nil
	}
	p := *c.property
	return &p
}

// Sensors returns a copy of the current sensor device list.
func (c *Client) Sensors() []waterapi.SensorDevice {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	out := make([]waterapi.SensorDevice, len(c.sensors))
	copy(out, c.sensors)
	return out
}

// SensorReadings returns a copy of the current reading list, most
// recent first.
func (c *Client) SensorReadings() []waterapi.SensorReading {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	out := make([]waterapi.SensorReading, len(c.readings))
	copy(out, c.readings)
	return out
}

// RecentAlerts returns a copy of the locally held alert list.
func (c *Client) RecentAlerts() []waterapi.Alert {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	out := make([]waterapi.Alert, len(c.alerts))
	copy(out, c.alerts)
	return out
}

// CheckConnection runs the connectivity probe and updates the
// process-wide online flag. Any HTTP response counts as reachable; only
// transport-level failure counts as unreachable.
func (c *Client) CheckConnection(ctx context.Context) bool {
	online := c.api.Probe(ctx)
	var flag int32
	if online {
		flag = 1
	}
	if prev := atomic.SwapInt32(&c.online, flag); prev != flag {
		c.logger.Info("connectivity changed", "online", online)
		c.notify(EventConnectivity)
	}
	return online
}

// Restore rebuilds the session from the durable local store, the way
// the mobile app does on launch. When both records are present the slot
// is set; if online the property data is refreshed from remote,
// otherwise the persisted sensor snapshot is loaded. Returns whether a
// session was restored.
func (c *Client) Restore(ctx context.Context) (bool, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	online := c.CheckConnection(ctx)

	producer, okP, err := c.store.LoadProducer()
	if err != nil {
		return false, err
	}
	property, okQ, err := c.store.LoadProperty()
	if err != nil {
		return false, err
	}
	if !okP || !okQ {
		c.logger.Info("no persisted session found")
		return false, nil
	}

	c.stateMu.Lock()
	c.producer = producer
	c.property = property
	c.stateMu.Unlock()
	c.notify(EventSession)

	if online {
		if err := c.loadUserData(ctx, producer.ID); err != nil {
			c.logger.Warn("remote refresh failed, loading offline data", "error", err)
			c.loadOfflineData()
		}
	} else {
		c.loadOfflineData()
	}

	c.logger.Info("session restored", "producer_id", producer.ID, "online", online)
	return true, nil
}

// Logout clears the in-memory session and the session-related store
// keys. The offline-account list and the pending sync queue are durable
// history and remain untouched.
func (c *Client) Logout() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.store.ClearSession(); err != nil {
		return err
	}

	c.stateMu.Lock()
	c.producer = nil
	c.property = nil
	c.sensors = nil
	c.readings = nil
	c.alerts = nil
	c.stateMu.Unlock()

	c.api.SetToken("")
	c.notify(EventSession)
	c.logger.Info("logged out")
	return nil
}

// loadUserData refreshes the current producer's property from remote
// and reseeds the placeholder sensor data. Callers hold opMu.
func (c *Client) loadUserData(ctx context.Context, producerID waterapi.ID) error {
	page, err := c.api.ListProperties(ctx, waterapi.PropertyFilter{
		ProducerID: producerID,
		Page:       1,
		PageSize:   1,
	})
	if err != nil {
		return err
	}
	if len(page.Items) > 0 {
		property := page.Items[0]
		c.stateMu.Lock()
		c.property = &property
		err := c.store.SaveProperty(&property)
		c.stateMu.Unlock()
		if err != nil {
			return err
		}
		c.notify(EventSession)
	}
	return c.seedSensorData()
}

// loadOfflineData loads the persisted sensor snapshot, if any. Callers
// hold opMu.
func (c *Client) loadOfflineData() {
	snap, ok, err := c.store.LoadSensorSnapshot()
	if err != nil {
		c.logger.Warn("failed to load offline sensor snapshot", "error", err)
		return
	}
	if !ok {
		return
	}
	c.stateMu.Lock()
	c.sensors = snap.Sensors
	c.readings = snap.Readings
	c.alerts = snap.Alerts
	c.stateMu.Unlock()
	c.notify(EventSensors)
}
