// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package waterstore

import (
	"strings"
	"time"

	"github.com/WaterWise-GlobalSolution/go-watersync/waterapi"
)

// OfflineAccount is a locally persisted credential plus session snapshot,
// usable for login when the remote service cannot be reached. The list
// is append-only.
type OfflineAccount struct {
	Email    string            `json:"email"`
	Secret   string            `json:"secret"`
	Producer waterapi.Producer `json:"producer"`
	Property waterapi.Property `json:"property"`
}

// PendingSyncItem is a queued offline registration awaiting replay
// against the remote service once connectivity returns. The local ids
// minted for the offline records are kept so the session can be
// reconciled with the remote ids assigned during replay.
type PendingSyncItem struct {
	ID              string                         `json:"id"` // uuid
	QueuedAt        time.Time                      `json:"queuedAt"`
	Producer        waterapi.CreateProducerRequest `json:"producer"`
	Property        waterapi.CreatePropertyRequest `json:"property"`
	LocalProducerID waterapi.ID                    `json:"localProducerId"`
	LocalPropertyID waterapi.ID                    `json:"localPropertyId"`
}

// OfflineAccounts returns the full offline-account list in append order.
func (s *Store) OfflineAccounts() ([]OfflineAccount, error) {
	var accounts []OfflineAccount
	if _, err := getJSON(s, KeyOfflineAccounts, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// AppendOfflineAccount appends one account to the list.
func (s *Store) AppendOfflineAccount(account OfflineAccount) error {
	accounts, err := s.OfflineAccounts()
	if err != nil {
		return err
	}
	accounts = append(accounts, account)
	return setJSON(s, KeyOfflineAccounts, accounts)
}

// FindOfflineAccount looks up an account by exact case-insensitive email
// match and exact secret match.
func (s *Store) FindOfflineAccount(email, secret string) (*OfflineAccount, bool, error) {
	accounts, err := s.OfflineAccounts()
	if err != nil {
		return nil, false, err
	}
	for i := range accounts {
		if strings.EqualFold(accounts[i].Email, email) && accounts[i].Secret == secret {
			return &accounts[i], true, nil
		}
	}
	return nil, false, nil
}

// UpdateOfflineAccount replaces the embedded snapshot of the account
// matching email (case-insensitive). Used after a queued registration is
// replayed so later offline logins carry the remote ids.
func (s *Store) UpdateOfflineAccount(email string, producer waterapi.Producer, property waterapi.Property) error {
	accounts, err := s.OfflineAccounts()
	if err != nil {
		return err
	}
	for i := range accounts {
		if strings.EqualFold(accounts[i].Email, email) {
			accounts[i].Producer = producer
			accounts[i].Property = property
		}
	}
	return setJSON(s, KeyOfflineAccounts, accounts)
}

// PendingSyncItems returns the pending queue in FIFO order.
func (s *Store) PendingSyncItems() ([]PendingSyncItem, error) {
	var items []PendingSyncItem
	if _, err := getJSON(s, KeyPendingSyncQueue, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// EnqueuePendingSync appends one registration to the pending queue.
func (s *Store) EnqueuePendingSync(item PendingSyncItem) error {
	items, err := s.PendingSyncItems()
	if err != nil {
		return err
	}
	items = append(items, item)
	return setJSON(s, KeyPendingSyncQueue, items)
}

// ClearPendingSync drops the whole pending queue.
func (s *Store) ClearPendingSync() error {
	return s.Delete(KeyPendingSyncQueue)
}
