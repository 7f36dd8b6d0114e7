// Package json wraps the standard library,
// it adds user-friendly error messages and Must* variants.
package json

import (
	"encoding/json"

	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

func Encode(v any, pretty bool) ([]byte, error) {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, processJSONError(err)
	}
	return data, nil
}

func MustEncode(v any, pretty bool) []byte {
	data, err := Encode(v, pretty)
	if err != nil {
		panic(err)
	}
	return data
}

func EncodeString(v any, pretty bool) (string, error) {
	data, err := Encode(v, pretty)
	return string(data), err
}

func MustEncodeString(v any, pretty bool) string {
	data, err := EncodeString(v, pretty)
	if err != nil {
		panic(err)
	}
	return data
}

func Decode(data []byte, target any) error {
	if err := json.Unmarshal(data, target); err != nil {
		return processJSONError(err)
	}
	return nil
}

func MustDecode(data []byte, target any) {
	if err := Decode(data, target); err != nil {
		panic(err)
	}
}

func DecodeString(data string, target any) error {
	return Decode([]byte(data), target)
}

func MustDecodeString(data string, target any) {
	if err := DecodeString(data, target); err != nil {
		panic(err)
	}
}

func processJSONError(err error) error {
	switch err := err.(type) { // nolint: errorlint
	case *json.UnmarshalTypeError:
		return errors.Errorf(`key "%s" has invalid type "%s"`, err.Field, err.Value)
	case *json.SyntaxError:
		return errors.Errorf("%s, offset: %d", err, err.Offset)
	default:
		return err
	}
}
