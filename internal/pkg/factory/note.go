package factory

import (
	"context"
	"fmt"
	"strings"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cast"
	"github.com/umisama/go-regexpcache"

	"github.com/forgeport/forgeport/internal/pkg/model"
)

// lineCodeRegexp encodes a file hash and the old/new line numbers.
const lineCodeRegexp = `^([a-f0-9]+)_(\d+)_(\d+)$`

type noteStrategy struct {
	factory *Factory
}

func (s *noteStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	// Quote @mentions in the note text
	if note := object.GetString("note"); note != "" {
		object.Set("note", quoteMentions(note))
	}

	// A note of an unmapped author is kept, the original author
	// is recorded as a suffix of the note text
	s.applyAuthorSuffix(object, record, run)
	object.Delete("author")

	// Outdated flat diff positions are migrated to the nested shape
	for _, key := range []string{"position", "original_position", "change_position"} {
		if value, found := object.Get(key); found && value != nil {
			if position, ok := value.(*orderedmap.OrderedMap); ok {
				object.Set(key, migratePosition(position))
			}
		}
	}

	// Diff content comes from the side channel, some storage backends
	// reject null bytes
	if diff := object.GetString("diff_export"); diff != "" {
		object.Set("diff", strings.ReplaceAll(diff, "\x00", ""))
	}
	object.Delete("diff_export")

	return object, nil
}

func (s *noteStrategy) applyAuthorSuffix(object *model.Object, record *model.Record, run *model.BuildContext) {
	value, found := record.Attributes.Get("author_id")
	if !found || value == nil {
		return
	}
	if _, mapped := run.Users.Map(cast.ToInt64(value)); mapped {
		return
	}

	authorName := "unknown author"
	if author, found := record.Attributes.Get("author"); found {
		if authorMap, ok := author.(*orderedmap.OrderedMap); ok {
			if name, found := authorMap.Get("name"); found && name != nil {
				authorName = cast.ToString(name)
			}
		}
	}

	note := object.GetString("note")
	object.Set("note", fmt.Sprintf("%s\n\n*By %s on %s (imported from project export)*", note, authorName, run.Now()))
}

// migratePosition converts the outdated flat position payload
// (start_line_code/start_line_type/end_line_code/end_line_type)
// to the nested {start: {...}, end: {...}} shape. A payload already
// in the nested shape is returned unchanged.
func migratePosition(position *orderedmap.OrderedMap) *orderedmap.OrderedMap {
	if _, found := position.Get("start_line_code"); !found {
		return position
	}

	out := orderedmap.New()
	for _, key := range position.Keys() {
		switch key {
		case "start_line_code", "start_line_type", "end_line_code", "end_line_type":
			// migrated below
		default:
			value, _ := position.Get(key)
			out.Set(key, value)
		}
	}

	out.Set("start", migrateLineCode(position, "start"))
	out.Set("end", migrateLineCode(position, "end"))
	return out
}

func migrateLineCode(position *orderedmap.OrderedMap, side string) *orderedmap.OrderedMap {
	out := orderedmap.New()

	lineCode := ""
	if value, found := position.Get(side + "_line_code"); found && value != nil {
		lineCode = cast.ToString(value)
	}
	lineType, _ := position.Get(side + "_line_type")

	out.Set("line_code", lineCode)
	out.Set("type", lineType)

	// The line code encodes the old and the new line number
	if match := regexpcache.MustCompile(lineCodeRegexp).FindStringSubmatch(lineCode); match != nil {
		out.Set("old_line", cast.ToInt64(match[2]))
		out.Set("new_line", cast.ToInt64(match[3]))
	} else {
		out.Set("old_line", nil)
		out.Set("new_line", nil)
	}

	return out
}
