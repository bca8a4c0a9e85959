// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package watersync

import (
	"net/mail"
	"strings"
)

// ProducerInput is the caller-supplied producer half of a registration.
type ProducerInput struct {
	FullName string
	TaxID    string
	Email    string
	Phone    string
	Secret   string
}

// PropertyInput is the caller-supplied property half of a registration.
type PropertyInput struct {
	PropertyName       string
	Latitude           float64
	Longitude          float64
	AreaHectares       float64
	DegradationLevelID int
}

// validateRegistration rejects malformed input before any network or
// storage call, so no partial state is ever created from invalid input.
// Coordinate bounds are inclusive: latitude exactly ±90 and longitude
// exactly ±180 are accepted.
func validateRegistration(producer ProducerInput, property PropertyInput) error {
	if strings.TrimSpace(producer.FullName) == "" {
		return &ValidationError{Field: "fullName", Reason: "must not be empty"}
	}
	if producer.Secret == "" {
		return &ValidationError{Field: "secret", Reason: "must not be empty"}
	}
	if err := validateEmail(producer.Email); err != nil {
		return err
	}
	return validateProperty(property)
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &ValidationError{Field: "email", Reason: "not a valid address"}
	}
	return nil
}

func validateProperty(property PropertyInput) error {
	if strings.TrimSpace(property.PropertyName) == "" {
		return &ValidationError{Field: "propertyName", Reason: "must not be empty"}
	}
	if property.Latitude < -90 || property.Latitude > 90 {
		return &ValidationError{Field: "latitude", Reason: "must be within [-90, 90]"}
	}
	if property.Longitude < -180 || property.Longitude > 180 {
		return &ValidationError{Field: "longitude", Reason: "must be within [-180, 180]"}
	}
	if !(property.AreaHectares > 0) {
		return &ValidationError{Field: "areaHectares", Reason: "must be greater than zero"}
	}
	if property.DegradationLevelID < 1 || property.DegradationLevelID > 5 {
		return &ValidationError{Field: "degradationLevelId", Reason: "must be within [1, 5]"}
	}
	return nil
}
