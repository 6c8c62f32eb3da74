package constants

import (
	"regexp"
	"testing"
)

func TestTimeFormat(t *testing.T) {
	re := regexp.MustCompile(TimeFormatYearSecondsRegex)
	if !re.MatchString(TimeFormatYearSeconds) {
		t.Fatal("Mismatch between TimeFormatYearSeconds and regexp in constant TimeFormatYearSecondsRegex.")
	}
}

func TestMetricFieldsExtendCountryFields(t *testing.T) {
	if len(MetricFields) != len(CountryFields)+1 {
		t.Fatalf("expected metric fields to add exactly one column; got %v", MetricFields)
	}
	for idx, f := range CountryFields {
		if MetricFields[idx] != f {
			t.Fatalf("metric field %v = %q; expected %q", idx, MetricFields[idx], f)
		}
	}
	if MetricFields[len(MetricFields)-1] != "density" {
		t.Fatal("expected density to be the last metric field")
	}
}

func TestStepOrder(t *testing.T) {
	expected := []string{"cleanup", "extract", "transform", "load"}
	for idx, s := range expected {
		if StepNames[idx] != s {
			t.Fatalf("step %v = %q; expected %q", idx, StepNames[idx], s)
		}
	}
}
