package date

import "testing"

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	today := Today()
	tests := []struct {
		input    string
		expected Date
		err      bool
	}{
		{"2025-01-15", New(2025, 1, 15), false},
		{"2025-7-1", New(2025, 7, 1), false},
		{"10.10.24", New(2024, 10, 10), false},
		{"3/2/2024", New(2024, 2, 3), false},
		{"0d", today, false},
		{"-1d", today.Add(-1), false},
		{"-2w", today.Add(-14), false},
		{"+1y", New(today.Year()+1, today.Month(), today.Day()), false},
		{"1d", Date{}, true},
		{"32.01.24", Date{}, true},
		{"invalid-date", Date{}, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if (err != nil) != tt.err {
			t.Errorf("Parse(%q) error = %v, want error %v", tt.input, err, tt.err)
			continue
		}
		if got != tt.expected {
			t.Errorf("Parse(%q) = %v want %v", tt.input, got, tt.expected)
		}
	}
}

func TestUnixMilli(t *testing.T) {
	d := New(2024, 3, 1)
	// 2024-03-01T00:00:00Z
	const ms = 1709251200000
	if got := d.UnixMilli(); got != ms {
		t.Errorf("UnixMilli() = %v want %v", got, ms)
	}
	// any instant of that day maps back to the same date
	if got := FromUnixMilli(ms + 13*3600*1000); got != d {
		t.Errorf("FromUnixMilli() = %v want %v", got, d)
	}
}

func TestRange(t *testing.T) {
	r := NewRange(New(2024, 1, 10), New(2024, 1, 5))
	if r.From != New(2024, 1, 5) || r.To != New(2024, 1, 10) {
		t.Errorf("NewRange() = %v want bounds swapped", r)
	}
	for _, d := range []Date{r.From, r.To, New(2024, 1, 7)} {
		if !r.Contains(d) {
			t.Errorf("%v.Contains(%v) = false want true", r, d)
		}
	}
	if r.Contains(New(2024, 1, 11)) {
		t.Errorf("%v.Contains(2024-01-11) = true want false", r)
	}
}
