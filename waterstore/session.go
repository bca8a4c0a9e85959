// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package waterstore

import (
	"github.com/WaterWise-GlobalSolution/go-watersync/waterapi"
)

// Typed accessors for the session keys. Every successful login or
// register writes its resulting producer and property here before
// returning, so a restart can restore the session offline.

// SaveProducer persists the current producer.
func (s *Store) SaveProducer(p *waterapi.Producer) error {
	return setJSON(s, KeyCurrentProducer, p)
}

// LoadProducer returns the persisted current producer, if any.
func (s *Store) LoadProducer() (*waterapi.Producer, bool, error) {
	var p waterapi.Producer
	ok, err := getJSON(s, KeyCurrentProducer, &p)
	if err != nil || !ok {
		return nil, false, err
	}
	return &p, true, nil
}

// SaveProperty persists the current property.
func (s *Store) SaveProperty(p *waterapi.Property) error {
	return setJSON(s, KeyCurrentProperty, p)
}

// LoadProperty returns the persisted current property, if any.
func (s *Store) LoadProperty() (*waterapi.Property, bool, error) {
	var p waterapi.Property
	ok, err := getJSON(s, KeyCurrentProperty, &p)
	if err != nil || !ok {
		return nil, false, err
	}
	return &p, true, nil
}

// SaveSensorSnapshot persists the sensor/reading/alert snapshot.
func (s *Store) SaveSensorSnapshot(snap *waterapi.SensorSnapshot) error {
	return setJSON(s, KeySensorSnapshot, snap)
}

// LoadSensorSnapshot returns the persisted sensor snapshot, if any.
func (s *Store) LoadSensorSnapshot() (*waterapi.SensorSnapshot, bool, error) {
	var snap waterapi.SensorSnapshot
	ok, err := getJSON(s, KeySensorSnapshot, &snap)
	if err != nil || !ok {
		return nil, false, err
	}
	return &snap, true, nil
}
