package errors

import (
	// Go Internal Packages
	"fmt"
	"sort"
	"strings"
)

// ValidationErrors collects field level validation failures.
type ValidationErrors map[string][]string

// ValidationErrs returns an empty collector.
func ValidationErrs() ValidationErrors {
	return ValidationErrors{}
}

// Add records a problem with the given field.
func (ve ValidationErrors) Add(field, reason string) {
	ve[field] = append(ve[field], reason)
}

// Err returns nil when nothing was added.
func (ve ValidationErrors) Err() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

func (ve ValidationErrors) Error() string {
	fields := make([]string, 0, len(ve))
	for f := range ve {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(ve[f], ", ")))
	}
	return strings.Join(parts, "; ")
}
