package helper

import (
	"strconv"
	"strings"

	om "github.com/cevaris/ordered_map"
)

// OrderedMapKeysToStringSlice returns the string keys of o in insertion order.
func OrderedMapKeysToStringSlice(o *om.OrderedMap) []string {
	retval := make([]string, 0, o.Len())
	iter := o.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		retval = append(retval, kv.Key.(string))
	}
	return retval
}

// StringsToCsv joins s with commas and no spaces.
func StringsToCsv(s []string) string {
	return strings.Join(s, ",")
}

// StringPtrOrEmpty returns the value of p or "" when p is nil.
func StringPtrOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// EmptyToNilString returns nil for an empty string, else a pointer to a copy of s.
func EmptyToNilString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// FormatFloat renders f using the shortest representation that round-trips.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// EqualStringSlices returns true if a and b hold the same values in the same order.
func EqualStringSlices(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if a[idx] != b[idx] {
			return false
		}
	}
	return true
}
