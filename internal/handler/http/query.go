package http

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/movelaria/search-service/pkg/validator"
)

// fieldErrors accumulates per-field failures detected while decoding query
// parameters, so the whole request is validated before anything is rejected.
type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

// queryString returns a trimmed optional string parameter.
func queryString(q url.Values, name string) *string {
	if !q.Has(name) {
		return nil
	}
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil
	}
	return &v
}

// queryFloat parses an optional float parameter.
func queryFloat(q url.Values, name string, errs fieldErrors) *float64 {
	raw := q.Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		errs.add(name, "must be a valid number")
		return nil
	}
	return &v
}

// queryInt parses an optional integer parameter.
func queryInt(q url.Values, name string, errs fieldErrors) int {
	raw := q.Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		errs.add(name, "must be a valid integer")
		return 0
	}
	return v
}

// validateRequest runs struct-tag validation and merges in the field errors
// collected while decoding, so the response reports every invalid field of
// the request at once.
func validateRequest(req any, extra fieldErrors) error {
	err := validator.Validate(req)
	if err == nil {
		if len(extra) > 0 {
			return &validator.ValidationError{Extra: extra}
		}
		return nil
	}

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		if len(extra) > 0 {
			valErr.Extra = extra
		}
		return valErr
	}
	return err
}

// queryJSONArray parses an optional JSON-encoded string array parameter.
// Array filters travel JSON-encoded on query transports; a value that does
// not parse is a validation error, never silently ignored.
func queryJSONArray(q url.Values, name string, errs fieldErrors) []string {
	raw := q.Get(name)
	if raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		errs.add(name, "must be a JSON array of strings")
		return nil
	}
	return values
}
