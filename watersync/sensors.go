// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package watersync

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/WaterWise-GlobalSolution/go-watersync/waterapi"
)

// Placeholder sensor data. The product has no real telemetry backend:
// readings are synthesized locally with the same shapes and ranges the
// mobile app used, then persisted so they survive offline restarts.

const readingHistoryHours = 24

func mockSoilMoisture() float64   { return 45 + rand.Float64()*30 } // percent
func mockAirTemperature() float64 { return 18 + rand.Float64()*15 } // °C

func mockPrecipitation() float64 {
	if rand.Float64() < 0.3 {
		return rand.Float64() * 10 // millimeters
	}
	return 0
}

// seedSensorData regenerates the placeholder sensor snapshot and
// persists it. Callers hold opMu.
func (c *Client) seedSensorData() error {
	now := time.Now().UTC()

	readings := make([]waterapi.SensorReading, 0, readingHistoryHours)
	for i := 0; i < readingHistoryHours; i++ {
		moisture := mockSoilMoisture()
		temperature := mockAirTemperature()
		precipitation := mockPrecipitation()
		readings = append(readings, waterapi.SensorReading{
			ID:              waterapi.ID(fmt.Sprintf("%d", i+1)),
			SensorID:        "1",
			Timestamp:       now.Add(-time.Duration(i) * time.Hour),
			SoilMoisture:    &moisture,
			AirTemperature:  &temperature,
			PrecipitationMM: &precipitation,
		})
	}

	latest := readings[0]
	sensors := []waterapi.SensorDevice{
		{
			ID:          "1",
			SensorType:  "Soil Moisture",
			DeviceModel: "DHT22-WaterWise",
			InstalledAt: now,
			LastReading: &latest,
		},
		{
			ID:          "2",
			SensorType:  "Temperature",
			DeviceModel: "Temp-Sensor-Pro",
			InstalledAt: now,
		},
		{
			ID:          "3",
			SensorType:  "Precipitation",
			DeviceModel: "Rain-Gauge-Smart",
			InstalledAt: now,
		},
	}

	snapshot := &waterapi.SensorSnapshot{
		Sensors:  sensors,
		Readings: readings,
		Alerts:   c.RecentAlerts(),
	}

	c.stateMu.Lock()
	if err := c.store.SaveSensorSnapshot(snapshot); err != nil {
		c.stateMu.Unlock()
		return err
	}
	c.sensors = sensors
	c.readings = readings
	c.stateMu.Unlock()

	c.notify(EventSensors)
	return nil
}
