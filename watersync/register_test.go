package watersync_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/WaterWise-GlobalSolution/go-watersync/watersync"
)

func TestRegisterOnline(t *testing.T) {
	server := newTestServer(t)
	client, store, _ := newTestClient(t, server)

	require.NoError(t, client.Register(context.Background(),
		validProducerInput("c@d.com"), validPropertyInput()))

	producer := client.Producer()
	property := client.Property()
	require.NotNil(t, producer)
	require.NotNil(t, property)
	require.Equal(t, producer.ID, property.ProducerID)

	// Remote ids are numeric, not locally minted UUIDs.
	_, err := uuid.Parse(producer.ID.String())
	require.Error(t, err)

	remote, ok := server.ProducerByEmail("c@d.com")
	require.True(t, ok)
	require.Equal(t, remote.ID, producer.ID)
	require.Equal(t, 1, server.PropertyCount())

	// Both records persisted, nothing queued for later sync.
	_, ok2, err := store.LoadProducer()
	require.NoError(t, err)
	require.True(t, ok2)
	items, err := store.PendingSyncItems()
	require.NoError(t, err)
	require.Empty(t, items)

	require.Len(t, client.Sensors(), 3)
	require.Len(t, client.SensorReadings(), 24)
}

// P3 + Scenario C: with the remote unreachable, registration always
// succeeds, degraded to a local-only account.
func TestRegisterOffline(t *testing.T) {
	server := newTestServer(t)
	server.SetDown(true)
	client, store, _ := newTestClient(t, server)

	require.NoError(t, client.Register(context.Background(),
		validProducerInput("c@d.com"), validPropertyInput()))

	producer := client.Producer()
	property := client.Property()
	require.NotNil(t, producer)
	require.NotNil(t, property)
	require.Equal(t, producer.ID, property.ProducerID)

	// Local ids are opaque UUIDs, not wall-clock timestamps.
	_, err := uuid.Parse(producer.ID.String())
	require.NoError(t, err)
	_, err = uuid.Parse(property.ID.String())
	require.NoError(t, err)

	// Exactly one offline account appended.
	accounts, err := store.OfflineAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, "c@d.com", accounts[0].Email)

	// Registration queued for replay.
	items, err := store.PendingSyncItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, producer.ID, items[0].LocalProducerID)

	require.Len(t, client.Sensors(), 3)
}

// A failing property create after a successful producer create does not
// fail the registration: it degrades to the offline path. The remote
// producer is left orphaned (no compensating delete on the wire API).
func TestRegisterPartialRemoteFailureDegrades(t *testing.T) {
	server := newTestServer(t)
	server.SetFailProperties(true)
	client, store, _ := newTestClient(t, server)

	require.NoError(t, client.Register(context.Background(),
		validProducerInput("c@d.com"), validPropertyInput()))

	// Orphaned remote producer exists.
	_, ok := server.ProducerByEmail("c@d.com")
	require.True(t, ok)
	require.Equal(t, 0, server.PropertyCount())

	// Session committed from the offline path with local ids.
	producer := client.Producer()
	require.NotNil(t, producer)
	_, err := uuid.Parse(producer.ID.String())
	require.NoError(t, err)

	accounts, err := store.OfflineAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	items, err := store.PendingSyncItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
}

// P6: coordinate bounds are inclusive; invalid input is rejected before
// any network or storage call, so no partial state is ever created.
func TestRegisterValidation(t *testing.T) {
	base := validPropertyInput()

	cases := []struct {
		name     string
		producer watersync.ProducerInput
		mutate   func(*watersync.PropertyInput)
		wantOK   bool
	}{
		{"latitude 90 accepted", validProducerInput("a@b.com"),
			func(p *watersync.PropertyInput) { p.Latitude = 90 }, true},
		{"latitude -90 accepted", validProducerInput("a@b.com"),
			func(p *watersync.PropertyInput) { p.Latitude = -90 }, true},
		{"latitude 90.0001 rejected", validProducerInput("a@b.com"),
			func(p *watersync.PropertyInput) { p.Latitude = 90.0001 }, false},
		{"latitude -90.0001 rejected", validProducerInput("a@b.com"),
			func(p *watersync.PropertyInput) { p.Latitude = -90.0001 }, false},
		{"longitude 180 accepted", validProducerInput("a@b.com"),
			func(p *watersync.PropertyInput) { p.Longitude = 180 }, true},
		{"longitude -180 accepted", validProducerInput("a@b.com"),
			func(p *watersync.PropertyInput) { p.Longitude = -180 }, true},
		{"longitude 180.0001 rejected", validProducerInput("a@b.com"),
			func(p *watersync.PropertyInput) { p.Longitude = 180.0001 }, false},
		{"longitude -180.0001 rejected", validProducerInput("a@b.com"),
			func(p *watersync.PropertyInput) { p.Longitude = -180.0001 }, false},
		{"zero area rejected", validProducerInput("a@b.com"),
			func(p *watersync.PropertyInput) { p.AreaHectares = 0 }, false},
		{"negative area rejected", validProducerInput("a@b.com"),
			func(p *watersync.PropertyInput) { p.AreaHectares = -1 }, false},
		{"degradation level 0 rejected", validProducerInput("a@b.com"),
			func(p *watersync.PropertyInput) { p.DegradationLevelID = 0 }, false},
		{"degradation level 6 rejected", validProducerInput("a@b.com"),
			func(p *watersync.PropertyInput) { p.DegradationLevelID = 6 }, false},
		{"empty property name rejected", validProducerInput("a@b.com"),
			func(p *watersync.PropertyInput) { p.PropertyName = "  " }, false},
		{"empty full name rejected", watersync.ProducerInput{Email: "a@b.com", Secret: "pw"},
			nil, false},
		{"bad email rejected", watersync.ProducerInput{FullName: "A", Email: "not-an-email", Secret: "pw"},
			nil, false},
		{"empty secret rejected", watersync.ProducerInput{FullName: "A", Email: "a@b.com"},
			nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := newTestServer(t)
			server.SetDown(true) // validation must run before any network call
			client, store, _ := newTestClient(t, server)

			property := base
			if tc.mutate != nil {
				tc.mutate(&property)
			}
			err := client.Register(context.Background(), tc.producer, property)
			if tc.wantOK {
				require.NoError(t, err)
				require.True(t, client.IsAuthenticated())
				return
			}
			require.Error(t, err)
			require.True(t, watersync.IsValidationError(err), "want ValidationError, got %v", err)

			require.False(t, client.IsAuthenticated())
			accounts, err := store.OfflineAccounts()
			require.NoError(t, err)
			require.Empty(t, accounts)
			items, err := store.PendingSyncItems()
			require.NoError(t, err)
			require.Empty(t, items)
			_, ok, err := store.LoadProducer()
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

// P4: reloading from the durable store reproduces the session
// field-for-field.
func TestSessionPersistenceRoundTrip(t *testing.T) {
	server := newTestServer(t)
	server.SetDown(true)
	client, store, api := newTestClient(t, server)

	require.NoError(t, client.Register(context.Background(),
		validProducerInput("c@d.com"), validPropertyInput()))
	wantProducer := client.Producer()
	wantProperty := client.Property()

	restored := watersync.New(api, store, quietLogger())
	ok, err := restored.Restore(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, wantProducer, restored.Producer())
	require.Equal(t, wantProperty, restored.Property())
	require.True(t, restored.IsAuthenticated())
}

func TestRestoreWithoutSession(t *testing.T) {
	server := newTestServer(t)
	server.SetDown(true)
	client, _, _ := newTestClient(t, server)

	ok, err := client.Restore(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, client.IsAuthenticated())
}

// P5: logout clears the session but leaves durable history alone.
func TestLogoutClearsSessionOnly(t *testing.T) {
	server := newTestServer(t)
	server.SetDown(true)
	client, store, _ := newTestClient(t, server)

	require.NoError(t, client.Register(context.Background(),
		validProducerInput("c@d.com"), validPropertyInput()))
	require.NoError(t, client.Logout())

	require.False(t, client.IsAuthenticated())
	require.Nil(t, client.Producer())
	require.Nil(t, client.Property())
	require.Empty(t, client.Sensors())
	require.Empty(t, client.SensorReadings())

	accounts, err := store.OfflineAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	items, err := store.PendingSyncItems()
	require.NoError(t, err)
	require.Len(t, items, 1)

	// The offline account still works for a later login.
	require.NoError(t, client.Login(context.Background(), "c@d.com", "pw2"))
	require.True(t, client.IsAuthenticated())
}
