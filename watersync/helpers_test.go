package watersync_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/WaterWise-GlobalSolution/go-watersync/internal/waterapitest"
	"github.com/WaterWise-GlobalSolution/go-watersync/waterapi"
	"github.com/WaterWise-GlobalSolution/go-watersync/waterstore"
	"github.com/WaterWise-GlobalSolution/go-watersync/watersync"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient wires a synchronizer to the reference server with a
// fresh in-memory store.
func newTestClient(t *testing.T, server *waterapitest.Server) (*watersync.Client, *waterstore.Store, *waterapi.Client) {
	t.Helper()

	cfg := &waterapi.Config{
		BaseURL:       server.URL(),
		Timeout:       2 * time.Second,
		RetryAttempts: 1,
	}
	api := waterapi.NewClient(cfg, quietLogger())

	store, err := waterstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return watersync.New(api, store, quietLogger()), store, api
}

func newTestServer(t *testing.T) *waterapitest.Server {
	t.Helper()
	server := waterapitest.NewServer(quietLogger())
	t.Cleanup(server.Close)
	return server
}

func validProducerInput(email string) watersync.ProducerInput {
	return watersync.ProducerInput{
		FullName: "C D",
		Email:    email,
		Secret:   "pw2",
	}
}

func validPropertyInput() watersync.PropertyInput {
	return watersync.PropertyInput{
		PropertyName:       "Farm",
		Latitude:           -23.5,
		Longitude:          -46.6,
		AreaHectares:       10,
		DegradationLevelID: 2,
	}
}
