package submission_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-mdform/pkg/submission"
)

func TestCollect_FeedbackExample(t *testing.T) {
	entries := []submission.Entry{
		{Name: "name", Value: "Jane"},
		{Name: "email", Value: "jane@x.com"},
		{Name: "feature", Value: "UI"},
		{Name: "feature", Value: "Support"},
	}

	result := submission.Collect(entries)

	got, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	want := `{"name":"Jane","email":"jane@x.com","feature":["UI","Support"]}`
	if string(got) != want {
		t.Fatalf("collect mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestCollect_SingleFieldStaysScalar(t *testing.T) {
	result := submission.Collect([]submission.Entry{{Name: "rating", Value: "5"}})

	got, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if string(got) != `{"rating":"5"}` {
		t.Fatalf("expected scalar rating, got %s", got)
	}
	value, ok := result.Get("rating")
	if !ok {
		t.Fatalf("expected rating key")
	}
	if value.IsList() {
		t.Fatalf("expected scalar value, got list %v", value.Strings())
	}
}

func TestCollect_NoRepeatsMatchesPlainMapping(t *testing.T) {
	entries := []submission.Entry{
		{Name: "name", Value: "Ada"},
		{Name: "phone", Value: ""},
		{Name: "comment", Value: "multi\nline"},
	}

	got := submission.Collect(entries).Map()

	want := map[string]any{}
	for _, entry := range entries {
		want[entry.Name] = entry.Value
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_RepeatedNameKeepsEveryValueInOrder(t *testing.T) {
	for k := 2; k <= 6; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			var entries []submission.Entry
			var want []string
			for i := 0; i < k; i++ {
				value := fmt.Sprintf("v%d", i)
				entries = append(entries,
					submission.Entry{Name: "tag", Value: value},
					submission.Entry{Name: fmt.Sprintf("other%d", i), Value: "x"},
				)
				want = append(want, value)
			}

			value, ok := submission.Collect(entries).Get("tag")
			if !ok {
				t.Fatalf("expected tag key")
			}
			if !value.IsList() {
				t.Fatalf("expected list for repeated name")
			}
			if diff := cmp.Diff(want, value.Strings()); diff != "" {
				t.Fatalf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCollect_KeysFollowFirstOccurrence(t *testing.T) {
	entries := []submission.Entry{
		{Name: "b", Value: "1"},
		{Name: "a", Value: "2"},
		{Name: "b", Value: "3"},
		{Name: "c", Value: "4"},
		{Name: "a", Value: "5"},
	}

	got := submission.Collect(entries).Keys()
	if diff := cmp.Diff([]string{"b", "a", "c"}, got); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_EmptyInput(t *testing.T) {
	for name, entries := range map[string][]submission.Entry{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			result := submission.Collect(entries)
			if result.Len() != 0 {
				t.Fatalf("expected empty result, got %d keys", result.Len())
			}
			got, err := json.Marshal(result)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != "{}" {
				t.Fatalf("expected {}, got %s", got)
			}
		})
	}
}

func TestCollector_ListAlways(t *testing.T) {
	collector := submission.NewCollector(submission.WithListMode(submission.ListAlways))
	result := collector.Collect([]submission.Entry{
		{Name: "rating", Value: "5"},
		{Name: "feature", Value: "UI"},
		{Name: "feature", Value: "Performance"},
	})

	got, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"rating":["5"],"feature":["UI","Performance"]}`
	if string(got) != want {
		t.Fatalf("list mode mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestCollector_SkipEmptyNames(t *testing.T) {
	entries := []submission.Entry{
		{Name: "", Value: "dropped"},
		{Name: "  ", Value: "dropped"},
		{Name: "kept", Value: "yes"},
	}

	if got := submission.Collect(entries).Len(); got != 3 {
		t.Fatalf("default collector should keep empty names, got %d keys", got)
	}

	result := submission.NewCollector(submission.WithSkipEmptyNames()).Collect(entries)
	if diff := cmp.Diff([]string{"kept"}, result.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_DoesNotAliasPreviousResult(t *testing.T) {
	entries := []submission.Entry{
		{Name: "feature", Value: "UI"},
		{Name: "feature", Value: "Support"},
	}
	first := submission.Collect(entries)
	second := submission.Collect(append(entries, submission.Entry{Name: "feature", Value: "Performance"}))

	firstValue, _ := first.Get("feature")
	if diff := cmp.Diff([]string{"UI", "Support"}, firstValue.Strings()); diff != "" {
		t.Fatalf("first result changed (-want +got):\n%s", diff)
	}
	secondValue, _ := second.Get("feature")
	if secondValue.Len() != 3 {
		t.Fatalf("expected 3 values, got %d", secondValue.Len())
	}
}

func TestParseListMode(t *testing.T) {
	cases := map[string]submission.ListMode{
		"":         submission.ListRepeated,
		"repeated": submission.ListRepeated,
		" Always ": submission.ListAlways,
	}
	for raw, want := range cases {
		got, err := submission.ParseListMode(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: want %v, got %v", raw, want, got)
		}
	}
	if _, err := submission.ParseListMode("sometimes"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
