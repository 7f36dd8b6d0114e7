package filesystem

import (
	"strings"

	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/forgeport/forgeport/internal/pkg/encoding/json"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

// RawFile is a file with a string content.
type RawFile struct {
	path    string
	desc    string
	Content string
}

// JSONFile is a file with an ordered JSON map content,
// the key order is preserved on encode.
type JSONFile struct {
	path    string
	desc    string
	Content *orderedmap.OrderedMap
}

func NewRawFile(path, content string) *RawFile {
	return &RawFile{path: path, Content: content}
}

func NewJSONFile(path string, content *orderedmap.OrderedMap) *JSONFile {
	return &JSONFile{path: path, Content: content}
}

func (f *RawFile) Path() string {
	return f.path
}

func (f *RawFile) Description() string {
	return f.desc
}

func (f *RawFile) SetDescription(desc string) *RawFile {
	f.desc = desc
	return f
}

func (f *RawFile) ToJSONFile() (*JSONFile, error) {
	content := orderedmap.New()
	if err := json.DecodeString(f.Content, content); err != nil {
		fileDesc := strings.TrimSpace(f.desc + " file")
		return nil, errors.PrefixErrorf(err, `%s "%s" is invalid`, fileDesc, f.path)
	}

	jsonFile := NewJSONFile(f.path, content)
	jsonFile.desc = f.desc
	return jsonFile, nil
}

func (f *JSONFile) Path() string {
	return f.path
}

func (f *JSONFile) Description() string {
	return f.desc
}

func (f *JSONFile) SetDescription(desc string) *JSONFile {
	f.desc = desc
	return f
}

func (f *JSONFile) ToRawFile() (*RawFile, error) {
	content, err := json.EncodeString(f.Content, true)
	if err != nil {
		fileDesc := strings.TrimSpace(f.desc + " file")
		return nil, errors.PrefixErrorf(err, `cannot encode %s "%s"`, fileDesc, f.path)
	}

	rawFile := NewRawFile(f.path, content)
	rawFile.desc = f.desc
	return rawFile, nil
}
