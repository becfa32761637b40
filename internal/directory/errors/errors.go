// Package errors holds the sentinel errors of the directory service and the
// ValidationError returned by the write gate.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrDuplicate    = fmt.Errorf("duplicate employee")
	ErrInvalidInput = fmt.Errorf("invalid input")
)

// ValidationError carries every rule violation found for a candidate record.
// Fields maps a field name to the message key of its first failing rule;
// Conflicts lists uniqueness message keys in check order.
type ValidationError struct {
	Fields    map[string]string
	Conflicts []string
}

// Empty reports whether no violation was recorded.
func (v *ValidationError) Empty() bool {
	return v == nil || (len(v.Fields) == 0 && len(v.Conflicts) == 0)
}

// Keys returns all message keys, field keys first (sorted by field name),
// then conflicts.
func (v *ValidationError) Keys() []string {
	if v == nil {
		return nil
	}
	fields := make([]string, 0, len(v.Fields))
	for f := range v.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	keys := make([]string, 0, len(v.Fields)+len(v.Conflicts))
	for _, f := range fields {
		keys = append(keys, v.Fields[f])
	}
	return append(keys, v.Conflicts...)
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", v.Unwrap(), strings.Join(v.Keys(), ", "))
}

// Unwrap yields ErrInvalidInput when a field rule failed and ErrDuplicate
// when only uniqueness checks failed.
func (v *ValidationError) Unwrap() error {
	if len(v.Fields) > 0 {
		return ErrInvalidInput
	}
	return ErrDuplicate
}

// AsValidation extracts a *ValidationError from err's chain.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
