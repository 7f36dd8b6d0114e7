package factory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeport/forgeport/internal/pkg/model"
)

func buildGrantLevel(t *testing.T, run *model.BuildContext, level model.AccessLevel) model.AccessLevel {
	t.Helper()
	f, _ := newTestFactory()

	payload := fmt.Sprintf(`{
		"name": "main",
		"merge_access_levels": [{"access_level": %d}]
	}`, int64(level))

	object, err := f.Build(context.Background(), model.NewRecord(model.KindProtectedBranch, 0, attrsFromJSON(t, payload)), run)
	require.NoError(t, err)
	require.Len(t, object.Children, 1)
	require.Equal(t, model.KindMergeAccessLevel, object.Children[0].Kind)
	return model.AccessLevel(object.Children[0].GetInt64("access_level"))
}

func TestAccessLevelClampWithoutRootGroup(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		level    model.AccessLevel
		expected model.AccessLevel
	}{
		{"no access preserved", model.NoAccess, model.NoAccess},
		{"developer clamped", model.Developer, model.Maintainer},
		{"maintainer stays", model.Maintainer, model.Maintainer},
		{"owner clamped down", model.Owner, model.Maintainer},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, buildGrantLevel(t, newTestRun(), tc.level))
		})
	}
}

func TestAccessLevelKeptWithMatchingMembership(t *testing.T) {
	t.Parallel()

	// The importer holds exactly Developer in the destination root group
	run := newTestRun()
	run.RootGroup = &model.RootGroupInfo{ID: 9, HasMembership: true, Membership: model.Developer}

	assert.Equal(t, model.Developer, buildGrantLevel(t, run, model.Developer))
	// Any other level is still clamped
	assert.Equal(t, model.Maintainer, buildGrantLevel(t, run, model.Owner))
	assert.Equal(t, model.NoAccess, buildGrantLevel(t, run, model.NoAccess))
}

func TestAccessLevelClampWithoutMembership(t *testing.T) {
	t.Parallel()

	run := newTestRun()
	run.RootGroup = &model.RootGroupInfo{ID: 9, HasMembership: false}

	assert.Equal(t, model.Maintainer, buildGrantLevel(t, run, model.Developer))
}

func TestProtectedBranchGrantUserCleared(t *testing.T) {
	t.Parallel()
	f, _ := newTestFactory()

	object, err := f.Build(context.Background(), model.NewRecord(model.KindProtectedBranch, 0, attrsFromJSON(t, `{
		"name": "main",
		"push_access_levels": [{"access_level": 40, "user_id": 99}]
	}`)), newTestRun())
	require.NoError(t, err)
	require.Len(t, object.Children, 1)

	// An unmapped per-user grant loses the user, not the whole grant
	grant := object.Children[0]
	userID, found := grant.Get("user_id")
	assert.True(t, found)
	assert.Nil(t, userID)
}
