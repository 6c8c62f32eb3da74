package helper

import (
	"testing"

	om "github.com/cevaris/ordered_map"
)

func TestOrderedMapKeysToStringSlice(t *testing.T) {
	o := om.NewOrderedMap()
	o.Set("name", "text")
	o.Set("capital", "text")
	o.Set("density", "float")
	got := OrderedMapKeysToStringSlice(o)
	expected := []string{"name", "capital", "density"}
	if !EqualStringSlices(got, expected) {
		t.Fatalf("expected %v; got %v", expected, got)
	}
	if len(OrderedMapKeysToStringSlice(om.NewOrderedMap())) != 0 {
		t.Fatal("expected empty slice for empty ordered map")
	}
}

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{
		10:       "10",
		10.5:     "10.5",
		0:        "0",
		2.25e-05: "0.0000225",
	}
	for in, expected := range cases {
		if got := FormatFloat(in); got != expected {
			t.Fatalf("FormatFloat(%v): expected %q; got %q", in, expected, got)
		}
	}
}

func TestEmptyToNilString(t *testing.T) {
	if EmptyToNilString("") != nil {
		t.Fatal("expected nil for empty string")
	}
	p := EmptyToNilString("Cairo")
	if p == nil || *p != "Cairo" {
		t.Fatalf("expected pointer to Cairo; got %v", p)
	}
	if StringPtrOrEmpty(nil) != "" || StringPtrOrEmpty(p) != "Cairo" {
		t.Fatal("StringPtrOrEmpty round trip failed")
	}
}

func TestEqualStringSlices(t *testing.T) {
	if !EqualStringSlices(nil, []string{}) {
		t.Fatal("expected nil and empty slices to be equal")
	}
	if EqualStringSlices([]string{"a", "b"}, []string{"b", "a"}) {
		t.Fatal("expected order to matter")
	}
}
