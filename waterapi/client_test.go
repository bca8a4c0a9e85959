package waterapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:       baseURL,
		Timeout:       2 * time.Second,
		RetryAttempts: 1,
	}
}

func TestLoginNormalizesEmail(t *testing.T) {
	var gotBody LoginRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":       7,
			"fullName": "A B",
			"email":    "user@mail.com",
			"token":    "tok-1",
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	res, err := client.Login(context.Background(), "  User@Mail.com ", "secret1")
	require.NoError(t, err)

	require.Equal(t, "user@mail.com", gotBody.Email)
	require.Equal(t, "secret1", gotBody.Secret)
	require.Equal(t, ID("7"), res.Producer.ID)
	require.Equal(t, "tok-1", res.Token)
}

func TestLoginInvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "invalid credentials"})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	_, err := client.Login(context.Background(), "x@y.com", "bad")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginMalformedReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	_, err := client.Login(context.Background(), "x@y.com", "pw")
	require.ErrorIs(t, err, ErrMalformedReply)
}

func TestLoginUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(testConfig(server.URL), nil)
	_, err := client.Login(context.Background(), "x@y.com", "pw")
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestRetryOnServerError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": 1, "fullName": "C D", "email": "c@d.com"})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryAttempts = 2
	cfg.RetryDelay = time.Millisecond
	client := NewClient(cfg, nil)

	created, err := client.CreateProducer(context.Background(), &CreateProducerRequest{
		FullName: "C D", Email: "c@d.com", Secret: "pw",
	})
	require.NoError(t, err)
	require.Equal(t, ID("1"), created.ID)
	require.Equal(t, 2, calls)
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryAttempts = 3
	cfg.RetryDelay = time.Millisecond
	client := NewClient(cfg, nil)

	_, err := client.CreateProducer(context.Background(), &CreateProducerRequest{
		FullName: "C D", Email: "c@d.com", Secret: "pw",
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnreachable)
	require.Equal(t, 1, calls)
}

func TestUpdateProducerSendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/producers/42", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": 42, "fullName": "New Name", "email": "x@y.com"})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	client.SetToken("tok-99")

	name := "New Name"
	updated, err := client.UpdateProducer(context.Background(), ID("42"), &UpdateProducerRequest{FullName: &name})
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-99", gotAuth)
	require.Equal(t, "New Name", updated.FullName)
}

func TestListPropertiesFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "9", q.Get("producerId"))
		require.Equal(t, "2", q.Get("page"))
		require.Equal(t, "5", q.Get("pageSize"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{
				"id": 3, "producerId": 9, "degradationLevelId": 2,
				"propertyName": "Farm", "latitude": -23.5, "longitude": -46.6,
				"areaHectares": 10.0,
			}},
			"page": 2, "pageSize": 5, "totalItems": 6, "totalPages": 2,
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	page, err := client.ListProperties(context.Background(), PropertyFilter{
		ProducerID: ID("9"), Page: 2, PageSize: 5,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, ID("3"), page.Items[0].ID)
	require.Equal(t, ID("9"), page.Items[0].ProducerID)
	require.Equal(t, 6, page.TotalItems)
}

func TestIDAcceptsNumberAndString(t *testing.T) {
	var p Producer
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"fullName":"A","email":"a@b.com"}`), &p))
	require.Equal(t, ID("7"), p.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"local-uuid","fullName":"A","email":"a@b.com"}`), &p))
	require.Equal(t, ID("local-uuid"), p.ID)

	out, err := json.Marshal(ID("7"))
	require.NoError(t, err)
	require.Equal(t, `7`, string(out))

	out, err = json.Marshal(ID("local-uuid"))
	require.NoError(t, err)
	require.Equal(t, `"local-uuid"`, string(out))
}
