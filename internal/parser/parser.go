// Package parser decodes raw JSON documents into the model types the converters consume.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	stderrors "errors"

	"github.com/mcncl/jsonsheet/internal/errors"
	"github.com/mcncl/jsonsheet/internal/models"
)

// Parse decodes exactly one JSON document from r.
// Numbers stay json.Number so integer and decimal text reaches the sheet unchanged.
func Parse(r io.Reader) (models.JSONValue, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var root models.JSONValue
	if err := dec.Decode(&root); err != nil {
		return nil, decodeError(err)
	}

	// Only whitespace may follow the root value.
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case err == nil:
		return nil, errors.NewParsingError("more than one JSON value at the root", errors.ErrMultipleJSON)
	case !stderrors.Is(err, io.EOF):
		return nil, errors.NewParsingError("unexpected data after the JSON document", errors.ErrInvalidJSON)
	}

	return normalize(root), nil
}

func decodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stderrors.Is(err, io.EOF):
		return errors.NewParsingError("no JSON document found", errors.ErrEmptyInput)
	case stderrors.Is(err, io.ErrUnexpectedEOF):
		return errors.NewParsingError("JSON document ends early", errors.ErrInvalidJSON)
	case stderrors.As(err, &syntaxErr):
		return errors.NewParsingError(fmt.Sprintf("syntax error at byte %d: %s", syntaxErr.Offset, syntaxErr.Error()), errors.ErrInvalidJSON)
	case stderrors.As(err, &typeErr):
		return errors.NewParsingError(fmt.Sprintf("cannot decode %s at byte %d", typeErr.Value, typeErr.Offset), errors.ErrInvalidJSON)
	default:
		return errors.NewParsingError("failed to read JSON document", err)
	}
}

// normalize rewrites decoder maps and slices into JSONObject and JSONArray, recursively.
func normalize(v models.JSONValue) models.JSONValue {
	if obj, ok := v.(map[string]interface{}); ok {
		out := make(models.JSONObject, len(obj))
		for k, child := range obj {
			out[k] = normalize(child)
		}
		return out
	}
	if arr, ok := v.([]interface{}); ok {
		out := make(models.JSONArray, len(arr))
		for i := range arr {
			out[i] = normalize(arr[i])
		}
		return out
	}
	return v
}

// ParseBytes parses an uploaded JSON document.
func ParseBytes(data []byte) (models.JSONValue, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewInputError("uploaded document is empty", errors.ErrEmptyInput)
	}
	return Parse(bytes.NewReader(data))
}

func ParseString(s string) (models.JSONValue, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(s))
}

// ParseFile reads and parses the JSON document at path.
func ParseFile(path string) (models.JSONValue, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}

	data, err := os.ReadFile(path)
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return nil, errors.NewInputError(fmt.Sprintf("file %q not found", path), errors.ErrFileNotFound)
	case err != nil:
		return nil, errors.NewInputError(fmt.Sprintf("cannot read %q", path), err)
	case len(data) == 0:
		return nil, errors.NewInputError(fmt.Sprintf("file %q is empty", path), errors.ErrFileEmpty)
	}

	return Parse(bytes.NewReader(data))
}
