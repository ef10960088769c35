package scoring

import (
	"testing"
	"time"
)

var testRef = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestDecayTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ageDays int
		want    float64
	}{
		{0, 1.00},
		{1, 0.99},
		{2, 0.95},
		{3, 0.90},
		{4, 0.80},
		{5, 0.80},
		{30, 0.80},
	}

	for _, tc := range cases {
		published := testRef.AddDate(0, 0, -tc.ageDays).Format(time.RFC3339)
		got := Decay(published, testRef)
		if got != tc.want {
			t.Fatalf("age %d days: expected %.2f, got %.2f", tc.ageDays, tc.want, got)
		}
	}
}

func TestDecayMonotonicNonIncreasing(t *testing.T) {
	t.Parallel()

	prev := 1.01
	for age := 0; age <= 10; age++ {
		published := testRef.AddDate(0, 0, -age).Format(time.RFC3339)
		got := Decay(published, testRef)
		if got > prev {
			t.Fatalf("decay increased at age %d: %.2f > %.2f", age, got, prev)
		}
		prev = got
	}
}

func TestDecayUnparseableDate(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"", "   ", "not-a-date"} {
		if got := Decay(value, testRef); got != 0.80 {
			t.Fatalf("unparseable %q: expected 0.80, got %.2f", value, got)
		}
	}
}

func TestDecayFutureDateIsFresh(t *testing.T) {
	t.Parallel()

	published := testRef.AddDate(0, 0, 2).Format(time.RFC3339)
	if got := Decay(published, testRef); got != 1.00 {
		t.Fatalf("future date: expected 1.00, got %.2f", got)
	}
}

func TestParsePublishedDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value string
		want  time.Time
	}{
		{"2025-03-08T09:30:00Z", time.Date(2025, time.March, 8, 9, 30, 0, 0, time.UTC)},
		{"2025-03-08T09:30:00+00:00", time.Date(2025, time.March, 8, 9, 30, 0, 0, time.UTC)},
		{"2025-03-08T09:30:00", time.Date(2025, time.March, 8, 9, 30, 0, 0, time.UTC)},
		{"2025-03-08", time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, ok := ParsePublishedDate(tc.value)
		if !ok {
			t.Fatalf("expected %q to parse", tc.value)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%q: expected %v, got %v", tc.value, tc.want, got)
		}
	}

	if _, ok := ParsePublishedDate(""); ok {
		t.Fatal("expected empty string to fail parsing")
	}
}
