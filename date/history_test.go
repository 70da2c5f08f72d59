package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Test is about appending two values in reverse order and checking that everything is
	// as expected at every step of the way.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[1] != d1 {
		t.Errorf("history[1].day = %v want %v", h.days[0], d1)
	}
	if h.days[0] != d2 {
		t.Errorf("history[0].day = %v want %v", h.days[1], d2)
	}
	if h.values[1] != v1 {
		t.Errorf("history[1].value = %v want %v", h.values[0], v1)
	}
	if h.values[0] != v2 {
		t.Errorf("history[0].value = %v want %v", h.values[1], v2)
	}

}

func TestValueAsOf(t *testing.T) {
	h := new(History[float64])
	h.Append(New(2024, 1, 10), 100).Append(New(2024, 1, 20), 150).Append(New(2024, 1, 15), 120)

	tests := []struct {
		day    Date
		want   float64
		wantOk bool
	}{
		{New(2024, 1, 1), 0, false},
		{New(2024, 1, 10), 100, true},
		{New(2024, 1, 14), 100, true},
		{New(2024, 1, 15), 120, true},
		{New(2024, 1, 19), 120, true},
		{New(2024, 2, 1), 150, true},
	}
	for _, tt := range tests {
		got, ok := h.ValueAsOf(tt.day)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("ValueAsOf(%v) = %v, %v want %v, %v", tt.day, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestBetween(t *testing.T) {
	h := new(History[string])
	for i := 1; i <= 5; i++ {
		h.Append(New(2024, 1, i*2), "v")
	}
	var days []Date
	for d := range h.Between(NewRange(New(2024, 1, 3), New(2024, 1, 8))) {
		days = append(days, d)
	}
	want := []Date{New(2024, 1, 4), New(2024, 1, 6), New(2024, 1, 8)}
	if len(days) != len(want) {
		t.Fatalf("Between() = %v want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("Between()[%d] = %v want %v", i, days[i], want[i])
		}
	}
}
