// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// Package waterapitest is an in-memory reference implementation of the
// WaterWise remote API, used by tests and the example flow. It serves
// the wire endpoints the client depends on, issues bearer tokens on
// login, and can be flipped "down" so callers observe transport-level
// failures instead of HTTP replies.
package waterapitest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/WaterWise-GlobalSolution/go-watersync/waterapi"
)

const tokenExpiry = 24 * time.Hour

type storedProducer struct {
	record waterapi.Producer
	secret string
}

// Server is the in-memory reference remote service.
type Server struct {
	logger *slog.Logger
	auth   *tokenAuth

	mu         sync.Mutex
	producers  map[waterapi.ID]*storedProducer
	properties map[waterapi.ID]waterapi.Property
	nextID     int64

	down           int32 // transport-level failure switch
	failProperties int32 // POST /properties answers 500

	httpServer *httptest.Server
}

// NewServer starts the reference service on an httptest listener.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger:     logger,
		auth:       newTokenAuth("waterwise-test-secret"),
		producers:  make(map[waterapi.ID]*storedProducer),
		properties: make(map[waterapi.ID]waterapi.Property),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /producers", s.handleCreateProducer)
	mux.HandleFunc("PUT /producers/{id}", s.handleUpdateProducer)
	mux.HandleFunc("POST /properties", s.handleCreateProperty)
	mux.HandleFunc("GET /properties", s.handleListProperties)
	mux.HandleFunc("GET /degradation-levels", s.handleListDegradationLevels)

	s.httpServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&s.down) == 1 {
			// Simulate an unreachable service: drop the connection so the
			// client sees a transport error, not an HTTP status.
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					conn.Close()
					return
				}
			}
			panic(http.ErrAbortHandler)
		}
		mux.ServeHTTP(w, r)
	}))
	return s
}

// URL returns the service base URL.
func (s *Server) URL() string { return s.httpServer.URL }

// Close shuts the listener down.
func (s *Server) Close() { s.httpServer.Close() }

// SetDown toggles the transport-failure switch.
func (s *Server) SetDown(down bool) {
	var flag int32
	if down {
		flag = 1
	}
	atomic.StoreInt32(&s.down, flag)
}

// SetFailProperties makes POST /properties answer 500, for exercising
// partial-registration paths.
func (s *Server) SetFailProperties(fail bool) {
	var flag int32
	if fail {
		flag = 1
	}
	atomic.StoreInt32(&s.failProperties, flag)
}

// AddProducer seeds an account with a fixed record and secret.
func (s *Server) AddProducer(p waterapi.Producer, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.producers[p.ID] = &storedProducer{record: p, secret: secret}
}

// AddProperty seeds a property record.
func (s *Server) AddProperty(p waterapi.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties[p.ID] = p
}

// ProducerByEmail returns a stored producer record by email.
func (s *Server) ProducerByEmail(email string) (waterapi.Producer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.producers {
		if strings.EqualFold(sp.record.Email, email) {
			return sp.record, true
		}
	}
	return waterapi.Producer{}, false
}

// PropertyCount returns the number of stored properties.
func (s *Server) PropertyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.properties)
}

func (s *Server) allocID() waterapi.ID {
	s.nextID++
	return waterapi.ID(strconv.FormatInt(s.nextID, 10))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, waterapi.ErrorResponse{Error: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req waterapi.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.producers {
		if strings.EqualFold(sp.record.Email, req.Email) && sp.secret == req.Secret {
			token, err := s.auth.generateToken(sp.record.ID.String(), tokenExpiry)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to issue token")
				return
			}
			writeJSON(w, http.StatusOK, waterapi.LoginResponse{Producer: sp.record, Token: token})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "invalid credentials")
}

func (s *Server) handleCreateProducer(w http.ResponseWriter, r *http.Request) {
	var req waterapi.CreateProducerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.FullName == "" || req.Secret == "" {
		writeError(w, http.StatusBadRequest, "fullName, email and secret are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.producers {
		if strings.EqualFold(sp.record.Email, req.Email) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
	}

	record := waterapi.Producer{
		ID:        s.allocID(),
		FullName:  req.FullName,
		TaxID:     req.TaxID,
		Email:     strings.ToLower(req.Email),
		Phone:     req.Phone,
		CreatedAt: time.Now().UTC(),
	}
	s.producers[record.ID] = &storedProducer{record: record, secret: req.Secret}
	s.logger.Debug("producer created", "id", record.ID, "email", record.Email)
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleUpdateProducer(w http.ResponseWriter, r *http.Request) {
	authID, err := s.auth.producerFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := waterapi.ID(r.PathValue("id"))
	if authID != id.String() {
		writeError(w, http.StatusForbidden, "token does not match producer")
		return
	}

	var req waterapi.UpdateProducerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.producers[id]
	if !ok {
		writeError(w, http.StatusNotFound, "producer not found")
		return
	}
	if req.FullName != nil {
		sp.record.FullName = *req.FullName
	}
	if req.TaxID != nil {
		sp.record.TaxID = *req.TaxID
	}
	if req.Email != nil {
		sp.record.Email = strings.ToLower(*req.Email)
	}
	if req.Phone != nil {
		sp.record.Phone = *req.Phone
	}
	writeJSON(w, http.StatusOK, sp.record)
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&s.failProperties) == 1 {
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	var req waterapi.CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.producers[req.ProducerID]; !ok {
		writeError(w, http.StatusUnprocessableEntity, "producer not found")
		return
	}

	record := waterapi.Property{
		ID:                 s.allocID(),
		ProducerID:         req.ProducerID,
		DegradationLevelID: req.DegradationLevelID,
		PropertyName:       req.PropertyName,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		AreaHectares:       req.AreaHectares,
		CreatedAt:          time.Now().UTC(),
	}
	s.properties[record.ID] = record
	s.logger.Debug("property created", "id", record.ID, "producer_id", record.ProducerID)
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	producerID := waterapi.ID(r.URL.Query().Get("producerId"))
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 10)

	s.mu.Lock()
	var matched []waterapi.Property
	for _, p := range s.properties {
		if producerID.IsZero() || p.ProducerID == producerID {
			matched = append(matched, p)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, paginate(matched, page, pageSize))
}

func (s *Server) handleListDegradationLevels(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 10)
	writeJSON(w, http.StatusOK, paginate(referenceLevels(), page, pageSize))
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func paginate[T any](items []T, page, pageSize int) waterapi.PagedResult[T] {
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return waterapi.PagedResult[T]{
		Items:      items[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

func referenceLevels() []waterapi.DegradationLevel {
	return []waterapi.DegradationLevel{
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
}
