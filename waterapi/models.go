// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package waterapi

import (
	"time"
)

// REST/JSON models for the WaterWise HTTP API.
// Record identifiers are opaque strings on our side: the remote service
// assigns numeric ids, locally minted records carry UUIDs. The ID type
// accepts both shapes on the wire.

// Producer is a registered account (a rural property owner).
type Producer struct {
	ID        ID        `json:"id"`
	FullName  string    `json:"fullName"`
	TaxID     string    `json:"taxId,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Property is a single rural landholding owned by exactly one producer.
type Property struct {
	ID                 ID        `json:"id"`
	ProducerID         ID        `json:"producerId"`
	DegradationLevelID int       `json:"degradationLevelId"`
	PropertyName       string    `json:"propertyName"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	AreaHectares       float64   `json:"areaHectares"`
	CreatedAt          time.Time `json:"createdAt,omitzero"`
}

// DegradationLevel is one entry of the fixed 1..5 soil-condition reference set.
type DegradationLevel struct {
	ID                int    `json:"id"`
	Code              string `json:"code"`
	Description       string `json:"description"`
	CorrectiveActions string `json:"correctiveActions,omitempty"`
}

// SensorDevice describes an IoT device installed on a property.
type SensorDevice struct {
	ID          ID             `json:"id"`
	SensorType  string         `json:"sensorType"`
	DeviceModel string         `json:"deviceModel"`
	InstalledAt time.Time      `json:"installedAt"`
	LastReading *SensorReading `json:"lastReading,omitempty"`
}

// SensorReading is a timestamped measurement tuple. Nil fields mean the
// device does not report that measurement.
type SensorReading struct {
	ID              ID        `json:"id"`
	SensorID        ID        `json:"sensorId"`
	Timestamp       time.Time `json:"timestamp"`
	SoilMoisture    *float64  `json:"soilMoisture,omitempty"`    // percent
	AirTemperature  *float64  `json:"airTemperature,omitempty"`  // °C
	PrecipitationMM *float64  `json:"precipitationMm,omitempty"` // millimeters
}

// Alert is a notification derived from a sensor reading.
type Alert struct {
	ID          ID        `json:"id"`
	ProducerID  ID        `json:"producerId"`
	ReadingID   ID        `json:"readingId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
}

// SensorSnapshot bundles the locally persisted sensor view of a session.
type SensorSnapshot struct {
	Sensors  []SensorDevice  `json:"sensors"`
	Readings []SensorReading `json:"readings"`
	Alerts   []Alert         `json:"alerts,omitempty"`
}

// PagedResult is the paging envelope used by list endpoints.
type PagedResult[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// LoginRequest is the POST /login body.
type LoginRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

// LoginResponse is the POST /login reply: the producer record flat,
// plus an optional bearer token on servers that issue one.
type LoginResponse struct {
	Producer
	Token string `json:"token,omitempty"`
}

// CreateProducerRequest is the POST /producers body.
type CreateProducerRequest struct {
	FullName string `json:"fullName"`
	TaxID    string `json:"taxId,omitempty"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Secret   string `json:"secret"`
}

// CreatePropertyRequest is the POST /properties body.
type CreatePropertyRequest struct {
	ProducerID         ID      `json:"producerId"`
	DegradationLevelID int     `json:"degradationLevelId"`
	PropertyName       string  `json:"propertyName"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	AreaHectares       float64 `json:"areaHectares"`
}

// UpdateProducerRequest is the PUT /producers/{id} body. Nil fields are
// left unchanged.
type UpdateProducerRequest struct {
	FullName *string `json:"fullName,omitempty"`
	TaxID    *string `json:"taxId,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// PropertyFilter selects and pages a property listing.
type PropertyFilter struct {
	ProducerID ID
	Page       int
	PageSize   int
}

// ErrorResponse is the error body returned by the remote service.
type ErrorResponse struct {
	Error string `json:"error"`
}
