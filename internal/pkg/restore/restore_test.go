package restore

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/keboola/go-utils/pkg/wildcards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeport/forgeport/internal/pkg/builder"
	"github.com/forgeport/forgeport/internal/pkg/factory"
	"github.com/forgeport/forgeport/internal/pkg/filesystem"
	"github.com/forgeport/forgeport/internal/pkg/filesystem/aferofs"
	"github.com/forgeport/forgeport/internal/pkg/log"
	"github.com/forgeport/forgeport/internal/pkg/model"
	"github.com/forgeport/forgeport/internal/pkg/store/memory"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

type fixture struct {
	fs       filesystem.Fs
	store    *memory.Store
	failures *memory.FailureSink
	logger   log.DebugLogger
	members  model.StaticMemberMap
	dst      Destination
}

func newFixture() *fixture {
	return &fixture{
		fs:       aferofs.NewMemoryFs(),
		store:    memory.New(),
		failures: memory.NewFailureSink(),
		logger:   log.NewDebugLogger(),
		members:  model.StaticMemberMap{"jane": 200, "bob": 201},
		dst: Destination{
			ProjectPath:     "my-project",
			NamespaceID:     5,
			ImporterUserID:  100,
			GroupVisibility: model.VisibilityPublic,
		},
	}
}

func (f *fixture) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, f.fs.WriteFile(filesystem.NewRawFile(path, content)))
}

func (f *fixture) restorer(opts ...Option) *Restorer {
	opts = append([]Option{
		WithClock(clockwork.NewFakeClockAt(time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC))),
	}, opts...)
	return NewRestorer(
		f.logger, f.fs, model.DefaultSchema(),
		factory.New(model.DefaultSchema(), builder.New(f.store)),
		f.store, f.failures, f.members, "group/p", f.dst, opts...,
	)
}

func TestRestoreMissingRootDocumentIsFatal(t *testing.T) {
	t.Parallel()
	f := newFixture()

	assert.False(t, f.restorer().Restore(context.Background()))
	require.Equal(t, 1, f.failures.Len())

	failure := f.failures.All()[0]
	// A restore-level failure has no relation
	assert.Nil(t, failure.RelationKey)
	assert.Nil(t, failure.RelationIndex)
	assert.Contains(t, failure.ExceptionMessage, "missing root document")
	assert.NotEmpty(t, failure.CorrelationID)
}

func TestRestoreProjectAndRelations(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.write(t, "tree/group/p.json", `{"description": "hello", "visibility_level": 20, "namespace_id": 999, "creator_id": 999}`)
	f.write(t, "tree/group/p/project_members.ndjson",
		`{"access_level": 40, "user": {"id": 10, "username": "jane", "email": "jane@example.com"}}`+"\n"+
			`{"access_level": 30, "user": {"id": 99, "username": "stranger"}}`+"\n")
	f.write(t, "tree/group/p/labels.ndjson", `{"title": "bug", "color": "#FF0000"}`+"\n")
	f.write(t, "tree/group/p/issues.ndjson",
		`{"iid": 1, "title": "first", "author_id": 10, "project_id": 777, "notes": [{"note": "hello", "author_id": 10}]}`+"\n"+
			`{"iid": 2, "title": "second", "author_id": 99}`+"\n")

	assert.True(t, f.restorer().Restore(context.Background()))
	assert.Equal(t, 0, f.failures.Len())

	// Project root with substituted destination values
	projects := f.store.All(model.KindProject)
	require.Len(t, projects, 1)
	project := projects[0]
	assert.Equal(t, "hello", project.GetString("description"))
	assert.Equal(t, int64(5), project.GetInt64("namespace_id"))
	assert.Equal(t, int64(100), project.GetInt64("creator_id"))
	assert.Equal(t, "my-project", project.GetString("path"))

	// The unmapped membership is discarded, not failed
	members := f.store.All(model.KindMember)
	require.Len(t, members, 1)
	assert.Equal(t, int64(200), members[0].GetInt64("user_id"))

	assert.Equal(t, 1, f.store.Count(model.KindLabel))

	issues := f.store.All(model.KindIssue)
	require.Len(t, issues, 2)
	// The member stream mapped user 10 to jane before the issues were read
	assert.Equal(t, int64(200), issues[0].GetInt64("author_id"))
	// The unmapped author falls back to the importer
	assert.Equal(t, int64(100), issues[1].GetInt64("author_id"))

	// Every restored record, including children, is bound to the
	// destination project, the exported project_id never survives
	projectID := project.GetInt64("id")
	assert.Equal(t, projectID, members[0].GetInt64("project_id"))
	assert.Equal(t, projectID, f.store.All(model.KindLabel)[0].GetInt64("project_id"))
	assert.Equal(t, projectID, issues[0].GetInt64("project_id"))
	assert.Equal(t, projectID, issues[1].GetInt64("project_id"))
	require.Len(t, issues[0].Children, 1)
	note := issues[0].Children[0]
	assert.Equal(t, model.KindNote, note.Kind)
	assert.Equal(t, projectID, note.GetInt64("project_id"))
}

func TestRestoreVisibilityResolution(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.dst.GroupVisibility = model.VisibilityInternal
	f.dst.InternalRestricted = true
	f.write(t, "tree/group/p.json", `{"description": "x", "visibility_level": 20}`)

	assert.True(t, f.restorer().Restore(context.Background()))
	project := f.store.All(model.KindProject)[0]
	// public -> internal by the group, internal -> private by the restriction
	assert.Equal(t, int64(model.VisibilityPrivate), project.GetInt64("visibility_level"))
}

func TestRestorePartialFailure(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.store.ValidateFn = func(object *model.Object) error {
		if object.Kind == model.KindMilestone && object.GetString("title") == "" {
			return errors.New("title is required")
		}
		return nil
	}
	f.write(t, "tree/group/p.json", `{"description": "x", "visibility_level": 0}`)
	f.write(t, "tree/group/p/milestones.ndjson",
		`{"iid": 1, "title": "v1.0"}`+"\n"+
			`{"iid": 2, "state": "active"}`+"\n"+
			`{"iid": 3, "title": "v2.0"}`+"\n")

	restorer := f.restorer()
	// The run still succeeds, the invalid record is recorded and skipped
	assert.True(t, restorer.Restore(context.Background()))
	assert.Equal(t, 1, restorer.FailedCount())
	assert.Equal(t, 2, f.store.Count(model.KindMilestone))

	require.Equal(t, 1, f.failures.Len())
	failure := f.failures.All()[0]
	require.NotNil(t, failure.RelationKey)
	assert.Equal(t, model.KindMilestone, *failure.RelationKey)
	require.NotNil(t, failure.RelationIndex)
	assert.Equal(t, 1, *failure.RelationIndex)
	assert.Equal(t, "title is required", failure.ExceptionMessage)
	assert.Equal(t, restorer.CorrelationID(), failure.CorrelationID)
	assert.Equal(t, time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC), failure.CreatedAt)
	assert.Equal(t, float64(2), failure.ExternalIdentifiers["iid"])
}

func TestRestoreMalformedLineRecorded(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.write(t, "tree/group/p.json", `{"description": "x", "visibility_level": 0}`)
	f.write(t, "tree/group/p/labels.ndjson",
		`{"title": "bug", "color": "#FF0000"}`+"\n"+
			`{not json`+"\n"+
			`{"title": "feature", "color": "#00FF00"}`+"\n")

	restorer := f.restorer()
	assert.True(t, restorer.Restore(context.Background()))
	// The malformed line is skipped, its siblings are imported
	assert.Equal(t, 2, f.store.Count(model.KindLabel))
	assert.Equal(t, 1, restorer.FailedCount())
	wildcards.Assert(t, `WARN  cannot import record 1 of relation "labels": %s`, f.logger.WarnMessages())
}

func TestRestoreStepRetryExhaustion(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.write(t, "tree/group/p.json", `{"description": "x", "visibility_level": 0}`)

	calls := 0
	step := &StepFunc{
		StepName: "refresh counters",
		Fn: func(ctx context.Context, run *model.BuildContext) error {
			calls++
			return errors.NewTransientError(errors.New("storage busy"))
		},
	}

	restorer := f.restorer(WithSteps(step))
	assert.True(t, restorer.Restore(context.Background()))

	// Bounded attempts, then a restore-level failure
	assert.Equal(t, 3, calls)
	require.Equal(t, 1, f.failures.Len())
	failure := f.failures.All()[0]
	assert.Nil(t, failure.RelationKey)
	assert.Contains(t, failure.ExceptionMessage, `step "refresh counters" failed`)
}

func TestRestoreStepPermanentErrorNotRetried(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.write(t, "tree/group/p.json", `{"description": "x", "visibility_level": 0}`)

	calls := 0
	step := &StepFunc{
		StepName: "rebuild search",
		Fn: func(ctx context.Context, run *model.BuildContext) error {
			calls++
			return errors.New("schema mismatch")
		},
	}

	assert.True(t, f.restorer(WithSteps(step)).Restore(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, f.failures.Len())
}

func TestRestoreStepSuccessAfterRetry(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.write(t, "tree/group/p.json", `{"description": "x", "visibility_level": 0}`)

	calls := 0
	step := &StepFunc{
		StepName: "refresh counters",
		Fn: func(ctx context.Context, run *model.BuildContext) error {
			calls++
			if calls < 3 {
				return errors.NewTransientError(errors.New("storage busy"))
			}
			return nil
		},
	}

	restorer := f.restorer(WithSteps(step))
	assert.True(t, restorer.Restore(context.Background()))
	assert.Equal(t, 3, calls)
	assert.Equal(t, 0, f.failures.Len())
	assert.Contains(t, f.logger.InfoMessages(), `retrying step "refresh counters" after attempt 1`)
}
