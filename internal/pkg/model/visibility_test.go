package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVisibility(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		exported   Visibility
		group      Visibility
		restricted bool
		expected   Visibility
	}{
		{"public into public group", VisibilityPublic, VisibilityPublic, false, VisibilityPublic},
		{"public into internal group", VisibilityPublic, VisibilityInternal, false, VisibilityInternal},
		{"public into private group", VisibilityPublic, VisibilityPrivate, false, VisibilityPrivate},
		{"internal into public group", VisibilityInternal, VisibilityPublic, false, VisibilityInternal},
		{"internal restricted", VisibilityInternal, VisibilityPublic, true, VisibilityPrivate},
		{"internal into internal group, restricted", VisibilityInternal, VisibilityInternal, true, VisibilityPrivate},
		{"private never widens", VisibilityPrivate, VisibilityPublic, false, VisibilityPrivate},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, ResolveVisibility(tc.exported, tc.group, tc.restricted), tc.name)
	}
}

func TestVisibilityString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "private", VisibilityPrivate.String())
	assert.Equal(t, "internal", VisibilityInternal.String())
	assert.Equal(t, "public", VisibilityPublic.String())
	assert.Equal(t, "unknown", Visibility(42).String())
}
