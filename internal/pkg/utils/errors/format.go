package errors

import (
	"strings"
)

const (
	Indent = "  "
	Bullet = "- "

	// inlineLimit - a single short sub error is printed inline, after the prefix.
	inlineLimit = 60
)

// Format converts an error to a human-readable string.
// Nested errors are printed as an indented bullet list.
func Format(err error) string {
	out := &strings.Builder{}
	writeError(out, err, 0)
	return out.String()
}

func writeError(out *strings.Builder, err error, level int) {
	if err == nil {
		panic("error cannot be nil")
	}

	// nolint: errorlint
	switch v := err.(type) {
	case nestedErrorGetter:
		writeNestedError(out, v, level)
	case multiErrorGetter:
		writeErrorsList(out, v.WrappedErrors(), level)
	case *withStack:
		writeError(out, v.Unwrap(), level)
	default:
		out.WriteString(err.Error())
	}
}

func writeNestedError(out *strings.Builder, err nestedErrorGetter, level int) {
	main := &strings.Builder{}
	writeError(main, err.MainError(), level)
	mainStr := main.String()

	subErrs := err.WrappedErrors()
	if len(subErrs) == 0 {
		out.WriteString(mainStr)
		return
	}

	// Main error is a prefix of the sub errors
	prefix := strings.TrimRight(mainStr, ".,:") + ":"
	out.WriteString(prefix)

	// A single short error is printed inline, otherwise a bullet list is used
	sub := &strings.Builder{}
	writeErrorsList(sub, subErrs, level)
	subStr := sub.String()
	if len(subErrs) == 1 && !strings.Contains(subStr, "\n") && len(prefix)+len(subStr) <= inlineLimit {
		out.WriteString(" ")
		out.WriteString(subStr)
		return
	}

	out.WriteString("\n")
	writeBulletList(out, subErrs, level)
}

func writeErrorsList(out *strings.Builder, errs []error, level int) {
	if len(errs) == 1 {
		writeError(out, errs[0], level)
		return
	}
	writeBulletList(out, errs, level)
}

func writeBulletList(out *strings.Builder, errs []error, level int) {
	indent := strings.Repeat(Indent, level)
	for i, err := range errs {
		item := &strings.Builder{}
		writeError(item, err, level+1)
		for j, line := range strings.Split(item.String(), "\n") {
			if j == 0 {
				out.WriteString(indent)
				out.WriteString(Bullet)
			} else {
				out.WriteString("\n")
			}
			out.WriteString(line)
		}
		if i != len(errs)-1 {
			out.WriteString("\n")
		}
	}
}
