package model

import (
	"github.com/forgeport/forgeport/internal/pkg/filesystem"
)

// Export tree layout:
//
//	tree/<importable-path>.json            root document
//	tree/<importable-path>/<relation>.ndjson  one relation, one record per line
const TreeDir = "tree"

// RootDocumentPath returns the path of the root JSON document.
func RootDocumentPath(importablePath string) string {
	return filesystem.Join(TreeDir, importablePath+".json")
}

// RelationsDirPath returns the directory with the relation streams.
func RelationsDirPath(importablePath string) string {
	return filesystem.Join(TreeDir, importablePath)
}

// RelationStreamPath returns the path of one relation ndjson stream.
func RelationStreamPath(importablePath, relationKey string) string {
	return filesystem.Join(TreeDir, importablePath, relationKey+".ndjson")
}
