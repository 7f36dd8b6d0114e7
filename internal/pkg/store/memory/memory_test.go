package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeport/forgeport/internal/pkg/model"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

func TestStoreCreateAndFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	label := model.NewObject(model.KindLabel)
	label.Set("title", "bug")
	label.Set("project_id", int64(1))
	require.NoError(t, s.Create(ctx, label))
	assert.True(t, label.Has("id"))

	found, err := s.Find(ctx, model.KindLabel, map[string]any{"title": "bug", "project_id": int64(1)})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Same(t, label, found)

	// No match returns nil, not an error
	found, err = s.Find(ctx, model.KindLabel, map[string]any{"title": "feature"})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestStoreCreateSavesChildren(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	issue := model.NewObject(model.KindIssue)
	issue.Set("title", "issue 1")
	note := model.NewObject(model.KindNote)
	note.Set("note", "a comment")
	issue.AddChild(note)

	require.NoError(t, s.Create(ctx, issue))
	assert.Equal(t, 1, s.Count(model.KindIssue))
	assert.Equal(t, 1, s.Count(model.KindNote))
	assert.True(t, note.Has("id"))
}

func TestStoreSharedChildSavedOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	// The same label instance attached to two links
	label := model.NewObject(model.KindLabel)
	label.Set("title", "bug")

	for i := 0; i < 2; i++ {
		link := model.NewObject(model.KindLabelLink)
		link.AddChild(label)
		require.NoError(t, s.Create(ctx, link))
	}

	assert.Equal(t, 2, s.Count(model.KindLabelLink))
	assert.Equal(t, 1, s.Count(model.KindLabel))
}

func TestStoreValidateFn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := New()
	s.ValidateFn = func(object *model.Object) error {
		if object.Kind == model.KindMilestone && object.GetString("title") == "" {
			return errors.New("title is required")
		}
		return nil
	}

	valid := model.NewObject(model.KindMilestone)
	valid.Set("title", "v1.0")
	require.NoError(t, s.Create(ctx, valid))

	invalid := model.NewObject(model.KindMilestone)
	err := s.Create(ctx, invalid)
	require.Error(t, err)
	assert.Equal(t, "title is required", err.Error())
	assert.Equal(t, 1, s.Count(model.KindMilestone))
	assert.False(t, invalid.Has("id"))
}

func TestFailureSink(t *testing.T) {
	t.Parallel()

	sink := NewFailureSink()
	assert.Equal(t, 0, sink.Len())

	sink.Append(&model.Failure{ProjectID: 1, ExceptionMessage: "boom"})
	sink.Append(&model.Failure{ProjectID: 1, ExceptionMessage: "bang"})

	assert.Equal(t, 2, sink.Len())
	all := sink.All()
	require.Len(t, all, 2)
	assert.Equal(t, "boom", all[0].ExceptionMessage)
}
