// Package parser reads the loosely structured JSON returned by the Gemini API.
// Responses are decoded into plain any trees and inspected through the
// accessors below; nothing assumes the model honoured the requested schema.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNotObject is returned when a payload decodes to something other than a JSON object
var ErrNotObject = errors.New("payload is not a JSON object")

// Decode parses a single JSON value. Numbers are kept as json.Number so that
// integers survive a round trip unchanged.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

// DecodeObject parses data and requires the top level to be an object
func DecodeObject(data []byte) (map[string]any, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}

// Object returns v as an object
func Object(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	return obj, ok
}

// Array returns v as an array
func Array(v any) ([]any, bool) {
	arr, ok := v.([]any)
	return arr, ok
}

// String returns v as a string
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// NonBlank returns v as a string when it holds something other than whitespace
func NonBlank(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Number returns v as a float64 when it is a JSON number
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Int returns v truncated to an int when it is a JSON number
func Int(v any) (int, bool) {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	f, ok := Number(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Path walks nested objects and arrays. Keys are strings for objects and ints for arrays.
func Path(v any, keys ...any) (any, bool) {
	cur := v
	for _, k := range keys {
		switch key := k.(type) {
		case string:
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			next, ok := obj[key]
			if !ok {
				return nil, false
			}
			cur = next
		case int:
			arr, ok := cur.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return nil, false
			}
			cur = arr[key]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

// First returns the value of the first key present in obj
func First(obj map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// StringList collects the scalar elements of an array as strings.
// Objects and nested arrays are skipped.
func StringList(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		switch s := item.(type) {
		case string:
			out = append(out, s)
		case json.Number:
			out = append(out, s.String())
		case float64:
			out = append(out, strconv.FormatFloat(s, 'f', -1, 64))
		case bool:
			out = append(out, strconv.FormatBool(s))
		}
	}
	return out
}

// Text renders a scalar as a string; numbers keep their JSON form
func Text(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	}
	return "", false
}
