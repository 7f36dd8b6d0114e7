package factory

import (
	"context"
	"testing"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeport/forgeport/internal/pkg/model"
)

func buildIssueNote(t *testing.T, payload string) *model.Object {
	t.Helper()
	f, _ := newTestFactory()

	issue, err := f.Build(context.Background(), model.NewRecord(model.KindIssue, 0, attrsFromJSON(t, `{
		"title": "t",
		"notes": [`+payload+`]
	}`)), newTestRun())
	require.NoError(t, err)
	require.Len(t, issue.Children, 1)
	require.Equal(t, model.KindNote, issue.Children[0].Kind)
	return issue.Children[0]
}

func TestNoteMentionsQuoted(t *testing.T) {
	t.Parallel()
	note := buildIssueNote(t, `{"note": "ping @bob and @alice.smith", "author_id": 10}`)
	assert.Equal(t, "ping `@bob` and `@alice.smith`", note.GetString("note"))
}

func TestNoteAlreadyQuotedMentionKept(t *testing.T) {
	t.Parallel()
	note := buildIssueNote(t, "{\"note\": \"see `@bob`\", \"author_id\": 10}")
	assert.Equal(t, "see `@bob`", note.GetString("note"))
}

func TestNoteEmailNotQuoted(t *testing.T) {
	t.Parallel()
	note := buildIssueNote(t, `{"note": "mail me at bob@example.com", "author_id": 10}`)
	assert.Equal(t, "mail me at bob@example.com", note.GetString("note"))
}

func TestNoteUnmappedAuthorSuffix(t *testing.T) {
	t.Parallel()
	note := buildIssueNote(t, `{
		"note": "original text",
		"author_id": 99,
		"author": {"name": "Jane Doe"}
	}`)

	// The note survives, the importer becomes the author and the original
	// author is recorded in the text
	assert.Equal(t, int64(100), note.GetInt64("author_id"))
	assert.Equal(t,
		"original text\n\n*By Jane Doe on 2023-05-01 12:00:00 UTC (imported from project export)*",
		note.GetString("note"))
	assert.False(t, note.Has("author"))
}

func TestNoteUnmappedAuthorWithoutIdentity(t *testing.T) {
	t.Parallel()
	note := buildIssueNote(t, `{"note": "x", "author_id": 99}`)
	assert.Equal(t,
		"x\n\n*By unknown author on 2023-05-01 12:00:00 UTC (imported from project export)*",
		note.GetString("note"))
}

func TestNoteMappedAuthorNoSuffix(t *testing.T) {
	t.Parallel()
	note := buildIssueNote(t, `{"note": "x", "author_id": 10, "author": {"name": "Jane Doe"}}`)
	assert.Equal(t, "x", note.GetString("note"))
	assert.Equal(t, int64(200), note.GetInt64("author_id"))
}

func TestNotePositionMigration(t *testing.T) {
	t.Parallel()
	note := buildIssueNote(t, `{
		"note": "diff comment",
		"author_id": 10,
		"position": {
			"base_sha": "abc",
			"start_line_code": "ab12cd_10_15",
			"start_line_type": "new",
			"end_line_code": "ab12cd_10_15",
			"end_line_type": "new"
		}
	}`)

	value, found := note.Get("position")
	require.True(t, found)
	position, ok := value.(*orderedmap.OrderedMap)
	require.True(t, ok)

	// Flat line codes are migrated to the nested shape
	_, found = position.Get("start_line_code")
	assert.False(t, found)

	startRaw, found := position.Get("start")
	require.True(t, found)
	start, ok := startRaw.(*orderedmap.OrderedMap)
	require.True(t, ok)

	lineCode, _ := start.Get("line_code")
	assert.Equal(t, "ab12cd_10_15", lineCode)
	lineType, _ := start.Get("type")
	assert.Equal(t, "new", lineType)
	oldLine, _ := start.Get("old_line")
	assert.Equal(t, int64(10), oldLine)
	newLine, _ := start.Get("new_line")
	assert.Equal(t, int64(15), newLine)

	baseSha, _ := position.Get("base_sha")
	assert.Equal(t, "abc", baseSha)
}

func TestNoteNestedPositionUnchanged(t *testing.T) {
	t.Parallel()
	note := buildIssueNote(t, `{
		"note": "diff comment",
		"author_id": 10,
		"position": {"base_sha": "abc", "start": {"line_code": "x_1_2"}}
	}`)

	value, _ := note.Get("position")
	position, ok := value.(*orderedmap.OrderedMap)
	require.True(t, ok)
	_, found := position.Get("start")
	assert.True(t, found)
	baseSha, _ := position.Get("base_sha")
	assert.Equal(t, "abc", baseSha)
}

func TestNoteDiffSideChannel(t *testing.T) {
	t.Parallel()
	note := buildIssueNote(t, `{"note": "x", "author_id": 10, "diff_export": "@@ -1 +1 @@\u0000+new line"}`)

	assert.False(t, note.Has("diff_export"))
	// Null bytes are stripped from the diff content
	assert.Equal(t, "@@ -1 +1 @@+new line", note.GetString("diff"))
}
