// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build integration

package docstore

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pdiddy/careerlink/pkg/types"
)

var (
	testSurreal   *SurrealStore
	testFirestore *FirestoreStore
)

// TestMain starts a SurrealDB container and a Firestore emulator shared by
// the integration tests.
func TestMain(m *testing.M) {
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	ctx := context.Background()

	surreal, surrealAddr := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        "surrealdb/surrealdb:v2.3.7",
		ExposedPorts: []string{"8000/tcp"},
		Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
		WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
	}, "8000")

	emulator, emulatorAddr := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        "gcr.io/google.com/cloudsdktool/google-cloud-cli:emulators",
		ExposedPorts: []string{"8080/tcp"},
		Cmd: []string{"gcloud", "beta", "emulators", "firestore", "start",
			"--host-port", "0.0.0.0:8080"},
		WaitingFor: wait.ForLog("running").WithStartupTimeout(120 * time.Second),
	}, "8080")

	var err error
	scfg := types.DefaultConfig().Store.SurrealDB
	scfg.URL = fmt.Sprintf("ws://%s/rpc", surrealAddr)
	scfg.Namespace = "test"
	scfg.Database = "test"
	testSurreal, err = NewSurrealStore(ctx, scfg, nil)
	if err != nil {
		log.Fatalf("connecting to SurrealDB: %v", err)
	}

	fcfg := types.DefaultConfig().Store.Firestore
	fcfg.ProjectID = "demo-careerlink"
	fcfg.EmulatorHost = emulatorAddr
	testFirestore, err = NewFirestoreStore(ctx, fcfg, nil)
	if err != nil {
		log.Fatalf("connecting to the Firestore emulator: %v", err)
	}

	code := m.Run()

	_ = testSurreal.Close()
	_ = testFirestore.Close()
	_ = surreal.Terminate(ctx)
	_ = emulator.Terminate(ctx)
	os.Exit(code)
}

func startContainer(ctx context.Context, req testcontainers.ContainerRequest, port string) (testcontainers.Container, string) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Fatalf("starting %s: %v", req.Image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("container host: %v", err)
	}
	if host == "" || host == "null" {
		host = "localhost"
	}
	mapped, err := container.MappedPort(ctx, nat.Port(port+"/tcp"))
	if err != nil {
		log.Fatalf("mapped port: %v", err)
	}
	return container, fmt.Sprintf("%s:%s", host, mapped.Port())
}

// wipe empties collections through the store's own List and Delete.
func wipe(t *testing.T, s Store, collections ...string) {
	t.Helper()
	ctx := context.Background()
	for _, c := range collections {
		docs, err := s.List(ctx, c)
		require.NoError(t, err)
		for _, d := range docs {
			require.NoError(t, s.Delete(ctx, c, d.ID))
		}
	}
}

func TestSurrealStore(t *testing.T) {
	wipe(t, testSurreal, "institutions", "users", "jobs")
	testStoreContract(t, testSurreal)
}

func TestSurrealStoreExplicitCreatedAtOrdersList(t *testing.T) {
	wipe(t, testSurreal, "jobs")
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, testSurreal.Put(ctx, types.Document{
		ID: "late", Collection: "jobs", Fields: map[string]any{"title": "Clerk"}, CreatedAt: base.Add(time.Hour),
	}))
	require.NoError(t, testSurreal.Put(ctx, types.Document{
		ID: "early", Collection: "jobs", Fields: map[string]any{"title": "Clerk"}, CreatedAt: base,
	}))

	got, err := testSurreal.List(ctx, "jobs")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].ID)
	assert.True(t, base.Equal(got[0].CreatedAt))
}

func TestFirestoreStore(t *testing.T) {
	wipe(t, testFirestore, "institutions", "users", "jobs")
	testStoreContract(t, testFirestore)
}

func TestFirestoreStoreDecodesNativeValues(t *testing.T) {
	wipe(t, testFirestore, "companies")
	ctx := context.Background()
	founded := time.Date(2009, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, testFirestore.Put(ctx, types.Document{
		ID:         "econet",
		Collection: "companies",
		Fields: map[string]any{
			"name":      "Econet Telecom Lesotho",
			"employees": 850,
			"listed":    true,
			"founded":   founded,
			"branches":  []string{"Maseru", "Leribe"},
		},
	}))

	got, err := testFirestore.Get(ctx, "companies", "econet")
	require.NoError(t, err)
	assert.Equal(t, int64(850), got.Fields["employees"])
	assert.Equal(t, true, got.Fields["listed"])
	assert.True(t, founded.Equal(got.Fields["founded"].(time.Time)))
	assert.Equal(t, []any{"Maseru", "Leribe"}, got.Fields["branches"])
}
