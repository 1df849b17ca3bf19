package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/careerlink/internal/docstore"
	"github.com/pdiddy/careerlink/internal/profile"
	"github.com/pdiddy/careerlink/internal/reconcile"
	"github.com/pdiddy/careerlink/pkg/types"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()
	viper.SetEnvPrefix("CAREERLINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func TestLoadConfigDefaults(t *testing.T) {
	resetViper(t)
	c, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), c)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	resetViper(t)
	t.Setenv("CAREERLINK_STORE_BACKEND", "firestore")
	t.Setenv("CAREERLINK_STORE_FIRESTORE_PROJECT_ID", "careerlink-prod")
	t.Setenv("CAREERLINK_STORE_FIRESTORE_TIMEOUT", "5s")
	t.Setenv("CAREERLINK_RECONCILE_DELETE_RATE", "2.5")

	c, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.BackendFirestore, c.Store.Backend)
	assert.Equal(t, "careerlink-prod", c.Store.Firestore.ProjectID)
	assert.Equal(t, "5s", c.Store.Firestore.Timeout.String())
	assert.Equal(t, 2.5, c.Reconcile.DeleteRate)
}

func TestLoadConfigFile(t *testing.T) {
	resetViper(t)
	path := filepath.Join(t.TempDir(), "careerlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  backend: memory
logging:
  level: debug
profiles:
  - name: jobs
    collection: jobs
    key_fields: [title, companyId, location]
    policy: recency
    timestamp_field: postedAt
`), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	c, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.BackendMemory, c.Store.Backend)
	assert.Equal(t, "debug", c.Logging.Level)
	require.Len(t, c.Profiles, 1)
	assert.Equal(t, []string{"title", "companyId", "location"}, c.Profiles[0].KeyFields)
	assert.Equal(t, types.PolicyRecency, c.Profiles[0].Policy)
	assert.Equal(t, "postedAt", c.Profiles[0].TimestampField)
}

func scanInstitutions(t *testing.T) *reconcile.Run {
	t.Helper()
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	for _, d := range []types.Document{
		{ID: "a", Collection: "institutions", Fields: map[string]any{"name": "NUL", "address": "Roma"}},
		{ID: "b", Collection: "institutions", Fields: map[string]any{"name": "nul "}},
		{ID: "c", Collection: "institutions", Fields: map[string]any{"name": "Botho"}},
		{ID: "d", Collection: "institutions", Fields: map[string]any{"name": "botho"}},
	} {
		require.NoError(t, store.Put(ctx, d))
	}
	reg, err := profile.NewRegistry(nil)
	require.NoError(t, err)
	run, err := reconcile.NewService(store, reg, types.ReconcileConfig{}, nil).Scan(ctx, "institutions")
	require.NoError(t, err)
	return run
}

func TestApplyKeep(t *testing.T) {
	run := scanInstitutions(t)
	require.Equal(t, "a", run.Session.Retained()["nul"])

	require.NoError(t, applyKeep(run, "1=b"))
	assert.Equal(t, "b", run.Session.Retained()["nul"])

	require.NoError(t, applyKeep(run, "botho=d"))
	assert.Equal(t, "d", run.Session.Retained()["botho"])

	assert.ErrorContains(t, applyKeep(run, "nul"), "want <group>=<id>")
	assert.ErrorContains(t, applyKeep(run, "3=a"), "group must be 1 to 2")
	assert.Error(t, applyKeep(run, "1=c"))
	assert.Error(t, applyKeep(run, "lce=x"))
}

func TestApplyKeepPrefersKeyOverGroupNumber(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	for _, d := range []types.Document{
		{ID: "a", Collection: "alumni", Fields: map[string]any{"studentNumber": "2"}},
		{ID: "b", Collection: "alumni", Fields: map[string]any{"studentNumber": "2"}},
		{ID: "c", Collection: "alumni", Fields: map[string]any{"studentNumber": "1"}},
		{ID: "d", Collection: "alumni", Fields: map[string]any{"studentNumber": "1"}},
	} {
		require.NoError(t, store.Put(ctx, d))
	}
	reg, err := profile.NewRegistry([]types.ProfileConfig{{
		Name: "alumni", Collection: "alumni", KeyFields: []string{"studentNumber"}, Policy: types.PolicyRecency,
	}})
	require.NoError(t, err)
	run, err := reconcile.NewService(store, reg, types.ReconcileConfig{}, nil).Scan(ctx, "alumni")
	require.NoError(t, err)
	require.Equal(t, "2", run.Session.Groups()[0].Key)

	require.NoError(t, applyKeep(run, "1=d"))
	assert.Equal(t, "d", run.Session.Retained()["1"])

	require.NoError(t, applyKeep(run, "2=b"))
	assert.Equal(t, "b", run.Session.Retained()["2"])

	assert.ErrorContains(t, applyKeep(run, "3=a"), "group must be 1 to 2")
}
