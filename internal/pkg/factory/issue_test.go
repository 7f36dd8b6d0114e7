package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeport/forgeport/internal/pkg/model"
)

func TestIssueRelativePosition(t *testing.T) {
	t.Parallel()
	f, _ := newTestFactory()
	run := newTestRun()

	object, err := f.Build(context.Background(), model.NewRecord(model.KindIssue, 0, attrsFromJSON(t, `{
		"iid": 1,
		"title": "first",
		"relative_position": 5
	}`)), run)
	require.NoError(t, err)
	require.NotNil(t, object)

	// Without a cached maximum the issue lands at two ideal distances
	assert.Equal(t, int64(1026), object.GetInt64("relative_position"))

	run.MaxPositions = map[string]int64{model.KindIssue: 10000}
	object, err = f.Build(context.Background(), model.NewRecord(model.KindIssue, 1, attrsFromJSON(t, `{
		"iid": 2,
		"title": "second"
	}`)), run)
	require.NoError(t, err)
	assert.Equal(t, int64(11026), object.GetInt64("relative_position"))
}

func TestIssueWorkItemType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		payload  string
		expected any
	}{
		{"explicit type wins", `{"title": "t", "issue_type": "incident", "work_item_type": "task"}`, "task"},
		{"recognized legacy type", `{"title": "t", "issue_type": "incident"}`, "incident"},
		{"unrecognized legacy type left unset", `{"title": "t", "issue_type": "epic_board"}`, nil},
		{"no type at all", `{"title": "t"}`, nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f, _ := newTestFactory()

			object, err := f.Build(context.Background(), model.NewRecord(model.KindIssue, 0, attrsFromJSON(t, tc.payload)), newTestRun())
			require.NoError(t, err)
			require.NotNil(t, object)

			assert.False(t, object.Has("issue_type"))
			if tc.expected == nil {
				assert.False(t, object.Has("work_item_type"))
			} else {
				assert.Equal(t, tc.expected, object.GetString("work_item_type"))
			}
		})
	}
}

func TestIssueAuthorFallsBackToImporter(t *testing.T) {
	t.Parallel()
	f, _ := newTestFactory()

	object, err := f.Build(context.Background(), model.NewRecord(model.KindIssue, 0, attrsFromJSON(t, `{
		"title": "t",
		"author_id": 99,
		"updated_by_id": 99
	}`)), newTestRun())
	require.NoError(t, err)
	require.NotNil(t, object)

	// The author falls back to the importer, the byline is cleared
	assert.Equal(t, int64(100), object.GetInt64("author_id"))
	updatedBy, found := object.Get("updated_by_id")
	assert.True(t, found)
	assert.Nil(t, updatedBy)
}

func TestIssueMappedAuthorKept(t *testing.T) {
	t.Parallel()
	f, _ := newTestFactory()

	object, err := f.Build(context.Background(), model.NewRecord(model.KindIssue, 0, attrsFromJSON(t, `{
		"title": "t",
		"author_id": 10
	}`)), newTestRun())
	require.NoError(t, err)
	assert.Equal(t, int64(200), object.GetInt64("author_id"))
}

func TestIssueMilestoneDedup(t *testing.T) {
	t.Parallel()
	f, _ := newTestFactory()
	run := newTestRun()

	payload := `{"title": "t", "milestone": {"title": "v1.0", "state": "active"}}`
	first, err := f.Build(context.Background(), model.NewRecord(model.KindIssue, 0, attrsFromJSON(t, payload)), run)
	require.NoError(t, err)
	second, err := f.Build(context.Background(), model.NewRecord(model.KindIssue, 1, attrsFromJSON(t, payload)), run)
	require.NoError(t, err)

	require.Len(t, first.Children, 1)
	require.Len(t, second.Children, 1)
	assert.Equal(t, model.KindMilestone, first.Children[0].Kind)
	// Equal titles resolve to one shared instance per run
	assert.Same(t, first.Children[0], second.Children[0])
	assert.False(t, first.Has("milestone"))
}

func TestIssueInlineChildren(t *testing.T) {
	t.Parallel()
	f, _ := newTestFactory()

	object, err := f.Build(context.Background(), model.NewRecord(model.KindIssue, 0, attrsFromJSON(t, `{
		"title": "t",
		"notes": [
			{"note": "first comment", "author_id": 10},
			{"note": "second comment", "author_id": 11}
		],
		"events": [
			{"action": "created", "author_id": 10},
			{"action": "closed", "author_id": 99},
			{"action": "reopened", "author_id": null},
			{"action": "updated"}
		]
	}`)), newTestRun())
	require.NoError(t, err)
	require.NotNil(t, object)

	kinds := map[string]int{}
	for _, child := range object.Children {
		kinds[child.Kind]++
	}
	assert.Equal(t, 2, kinds[model.KindNote])
	// Events with an unmapped, null or missing author are discarded, not failed
	assert.Equal(t, 1, kinds[model.KindEvent])
}
