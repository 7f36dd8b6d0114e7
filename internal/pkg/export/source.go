package export

import (
	"context"

	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

// DocumentSource adapts a legacy single-document export, one JSON object
// with the relation collections nested inside, to the streaming source
// interface. It is used to convert old exports to the tree layout.
type DocumentSource struct {
	document *orderedmap.OrderedMap
}

func NewDocumentSource(document *orderedmap.OrderedMap) *DocumentSource {
	return &DocumentSource{document: document}
}

func (s *DocumentSource) RootAttributes(ctx context.Context) (*orderedmap.OrderedMap, error) {
	return s.document, nil
}

func (s *DocumentSource) Records(ctx context.Context, relationKey string) (RecordIterator, error) {
	value, found := s.document.Get(relationKey)
	if !found || value == nil {
		return &sliceIterator{}, nil
	}

	items, ok := value.([]any)
	if !ok {
		return nil, errors.Errorf(`relation "%s" in the document is not an array`, relationKey)
	}
	return &sliceIterator{items: items}, nil
}

type sliceIterator struct {
	items []any
	next  int
}

func (i *sliceIterator) Next() (*orderedmap.OrderedMap, bool, error) {
	if i.next >= len(i.items) {
		return nil, false, nil
	}

	item := i.items[i.next]
	attributes, ok := item.(*orderedmap.OrderedMap)
	if !ok {
		return nil, false, errors.Errorf(`record %d is not an object`, i.next)
	}

	i.next++
	return attributes, true, nil
}

func (i *sliceIterator) Close() error {
	return nil
}
