package factory

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeport/forgeport/internal/pkg/builder"
	"github.com/forgeport/forgeport/internal/pkg/encoding/json"
	"github.com/forgeport/forgeport/internal/pkg/model"
	"github.com/forgeport/forgeport/internal/pkg/store/memory"
)

func newTestFactory() (*Factory, *memory.Store) {
	s := memory.New()
	return New(model.DefaultSchema(), builder.New(s)), s
}

func newTestRun() *model.BuildContext {
	return &model.BuildContext{
		ImporterUserID: 100,
		ProjectID:      1,
		NamespaceID:    5,
		Users:          model.UserMap{10: 200, 11: 201},
		Cache:          model.NewDedupCache(),
		Clock:          clockwork.NewFakeClockAt(time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)),
	}
}

func attrsFromJSON(t *testing.T, in string) *orderedmap.OrderedMap {
	t.Helper()
	attrs := orderedmap.New()
	json.MustDecodeString(in, attrs)
	return attrs
}

func TestBuildUnsupportedRelation(t *testing.T) {
	t.Parallel()
	f, _ := newTestFactory()

	_, err := f.Build(context.Background(), model.NewRecord("ldap_settings", 0, orderedmap.New()), newTestRun())
	require.Error(t, err)
	assert.Equal(t, `unsupported relation "ldap_settings"`, err.Error())
}

func TestBuildDropsPrimaryKeyAndUnknownAttributes(t *testing.T) {
	t.Parallel()
	f, _ := newTestFactory()

	object, err := f.Build(context.Background(), model.NewRecord(model.KindCiVariable, 0, attrsFromJSON(t, `{
		"id": 42,
		"key": "STAGING",
		"value": "secret",
		"protected": true,
		"some_unknown_column": "x"
	}`)), newTestRun())
	require.NoError(t, err)
	require.NotNil(t, object)

	assert.False(t, object.Has("id"))
	assert.False(t, object.Has("some_unknown_column"))
	assert.Equal(t, "STAGING", object.GetString("key"))

	// The encrypted value is cleared, not dropped
	value, found := object.Get("value")
	assert.True(t, found)
	assert.Nil(t, value)
}

func TestBuildStripsHazardousForeignKeys(t *testing.T) {
	t.Parallel()
	f, _ := newTestFactory()

	object, err := f.Build(context.Background(), model.NewRecord(model.KindPipelineSchedule, 0, attrsFromJSON(t, `{
		"description": "nightly",
		"ref": "main",
		"cron": "0 1 * * *",
		"project_id": 999,
		"owner_id": 42
	}`)), newTestRun())
	require.NoError(t, err)
	require.NotNil(t, object)

	assert.False(t, object.Has("project_id"))
	assert.Equal(t, "nightly", object.GetString("description"))
}

func TestBuildRoot(t *testing.T) {
	t.Parallel()
	f, _ := newTestFactory()

	project, err := f.BuildRoot(attrsFromJSON(t, `{
		"description": "hello @alice",
		"visibility_level": 20,
		"archived": false,
		"namespace_id": 77,
		"creator_id": 42,
		"ci_config_path": "../../evil.yml",
		"runners_token": "tok-123",
		"cached_markdown_version": 12
	}`), newTestRun())
	require.NoError(t, err)
	require.NotNil(t, project)

	assert.Equal(t, model.KindProject, project.Kind)
	// Source tenant ids and untrusted paths never survive
	assert.False(t, project.Has("namespace_id"))
	assert.False(t, project.Has("creator_id"))
	assert.False(t, project.Has("ci_config_path"))
	assert.False(t, project.Has("runners_token"))
	assert.False(t, project.Has("cached_markdown_version"))
	// Mentions in the description are quoted
	assert.Equal(t, "hello `@alice`", project.GetString("description"))
	assert.Equal(t, int64(20), project.GetInt64("visibility_level"))
}
