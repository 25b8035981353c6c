package summary

import (
	"reflect"
	"testing"
	"time"
)

func TestVerify(t *testing.T) {
	codes := []string{"IS", "NO", "dk"}

	tests := []struct {
		code string
		want bool
	}{
		{"IS", true},
		{"is", true},
		{" no ", true},
		{"DK", true},
		{"SE", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Verify(codes, tt.code); got != tt.want {
			t.Errorf("Verify(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestVerify_EmptyList(t *testing.T) {
	if Verify(nil, "IS") {
		t.Error("Verify(nil, IS) = true, want false")
	}
}

func TestTop(t *testing.T) {
	counts := map[string]int64{
		"22":   40,
		"80":   90,
		"443":  90,
		"8080": 10,
		"21":   5,
		"25":   15,
		"3389": 1,
	}

	got := Top(counts, DefaultTop)
	want := []Count{
		{"443", 90},
		{"80", 90},
		{"22", 40},
		{"25", 15},
		{"8080", 10},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Top() = %v, want %v", got, want)
	}
}

func TestTop_Short(t *testing.T) {
	got := Top(map[string]int64{"a": 1, "b": 2}, 5)
	want := []Count{{"b", 2}, {"a", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Top() = %v, want %v", got, want)
	}
}

func TestTop_Empty(t *testing.T) {
	got := Top(nil, 5)
	if got == nil || len(got) != 0 {
		t.Errorf("Top(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestTop_NoLimit(t *testing.T) {
	got := Top(map[string]int64{"a": 1, "b": 2, "c": 3}, 0)
	if len(got) != 3 {
		t.Errorf("len(Top(n=0)) = %d, want 3", len(got))
	}
}

func day(d int) time.Time {
	return time.Date(2025, time.April, d, 12, 0, 0, 0, time.UTC)
}

func TestWindowHistory(t *testing.T) {
	var history []Sample
	for d := 15; d >= 1; d-- {
		history = append(history, Sample{Date: day(d), PortsOpen: int64(d)})
	}

	got := WindowHistory(history, HistoryWindow)
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	if !got[0].Date.Equal(day(6)) || !got[9].Date.Equal(day(15)) {
		t.Errorf("window = %v .. %v, want day 6 .. day 15", got[0].Date, got[9].Date)
	}

	// input untouched
	if !history[0].Date.Equal(day(15)) {
		t.Error("WindowHistory modified its input")
	}
}

func TestLabels(t *testing.T) {
	got := Labels([]Sample{{Date: day(17)}, {Date: time.Date(2025, time.May, 3, 0, 0, 0, 0, time.UTC)}})
	want := []string{"17-04-2025", "03-05-2025"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Labels() = %v, want %v", got, want)
	}
}

func TestIPsInactive(t *testing.T) {
	tests := []struct {
		scanned, active, want int64
	}{
		{100, 40, 60},
		{100, 100, 0},
		{10, 20, 0},
	}
	for _, tt := range tests {
		s := Summary{IPsScanned: tt.scanned, IPsActive: tt.active}
		if got := s.IPsInactive(); got != tt.want {
			t.Errorf("IPsInactive(%d, %d) = %d, want %d", tt.scanned, tt.active, got, tt.want)
		}
	}
}

func TestCategoryTitle(t *testing.T) {
	for _, c := range Categories {
		if c.Title() == string(c) {
			t.Errorf("category %q has no display title", c)
		}
	}
	if got := Category("custom").Title(); got != "custom" {
		t.Errorf("Title() = %q, want %q", got, "custom")
	}
}
