package sale

import (
	"testing"
	"time"
)

func validMapping() map[string]any {
	return map[string]any{
		"order_id":      "A1",
		"customer_name": "Bob",
		"product":       "Pen",
		"quantity":      "3",
		"price":         "2.50",
		"date":          "2024-01-01",
	}
}

func TestCheckShape_Valid(t *testing.T) {
	if errs := CheckShape(validMapping()); len(errs) != 0 {
		t.Fatalf("CheckShape() = %v, want no errors", errs)
	}
}

func TestCheckShape_MissingKeys(t *testing.T) {
	m := map[string]any{"order_id": "A1"}

	errs := CheckShape(m)
	if len(errs) != 5 {
		t.Fatalf("CheckShape() returned %d errors, want 5 missing keys: %v", len(errs), errs)
	}
	for _, e := range errs {
		if e.Reason != "missing required key" {
			t.Errorf("unexpected reason %q for field %q", e.Reason, e.Field)
		}
	}
}

func TestCheckShape_BadValues(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
	}{
		{"quantity not integer", "quantity", "three"},
		{"quantity fractional", "quantity", "3.9"},
		{"price not numeric", "price", "free"},
		{"date two segments", "date", "2024-01"},
		{"date four segments", "date", "2024-01-01-01"},
		{"date non-numeric segment", "date", "2024-ab-01"},
		{"date empty segment", "date", "2024--01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMapping()
			m[tt.field] = tt.value

			errs := CheckShape(m)
			if len(errs) != 1 || errs[0].Field != tt.field {
				t.Errorf("CheckShape() = %v, want single error on %q", errs, tt.field)
			}
		})
	}
}

func TestCheckShape_LooseDate(t *testing.T) {
	// The shape check is deliberately not a calendar check: month 13
	// passes, and a time component after T is discarded.
	for _, date := range []string{"2024-13-45", "2024-01-01T15:04:05"} {
		m := validMapping()
		m["date"] = date
		if errs := CheckShape(m); len(errs) != 0 {
			t.Errorf("CheckShape() with date %q = %v, want pass", date, errs)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{" 12 ", 12, false},
		{"1", 1, false},
		{"0", 0, true},
		{"-2", 0, true},
		{"3.5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseQuantity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseQuantity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseQuantity(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"2.50", 2.5, false},
		{"0", 0, false},
		{"1999.999", 1999.999, false},
		{"-0.01", 0, true},
		{"cheap", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePrice(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	if err != nil {
		t.Fatalf("ParseDate(2024-01-01) error = %v", err)
	}
	if d.Format(DateLayout) != "2024-01-01" {
		t.Errorf("ParseDate(2024-01-01) = %v", d)
	}

	// Calendar validity is enforced here, unlike the shape check.
	if _, err := ParseDate("2024-13-01"); err == nil {
		t.Error("ParseDate(2024-13-01) expected error for month 13")
	}
	if _, err := ParseDate("01-02-2024"); err == nil {
		t.Error("ParseDate(01-02-2024) expected error for wrong layout")
	}

	future := time.Now().AddDate(0, 0, 2).Format(DateLayout)
	if _, err := ParseDate(future); err == nil {
		t.Errorf("ParseDate(%s) expected error for future date", future)
	}

	today := time.Now().UTC().Format(DateLayout)
	if _, err := ParseDate(today); err != nil {
		t.Errorf("ParseDate(%s) error = %v, today must be accepted", today, err)
	}
}

func TestRecord_Total(t *testing.T) {
	tests := []struct {
		quantity int
		price    float64
		want     float64
	}{
		{3, 2.50, 7.50},
		{1, 0, 0},
		{3, 0.333, 1.00},   // 0.999 rounds up
		{2, 10.005, 20.01}, // more input precision than two decimals
		{7, 19.99, 139.93},
	}

	for _, tt := range tests {
		r := Record{Quantity: tt.quantity, Price: tt.price}
		if got := r.Total(); got != tt.want {
			t.Errorf("Total() with quantity=%d price=%v = %v, want %v", tt.quantity, tt.price, got, tt.want)
		}
	}
}

func TestRecord_Fields(t *testing.T) {
	r := Record{
		OrderID:      "A1",
		CustomerName: "Bob",
		Product:      "Pen",
		Quantity:     3,
		Price:        2.5,
		Date:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	fields := r.Fields()
	if fields["date"] != "2024-01-01" {
		t.Errorf("Fields()[date] = %v, want 2024-01-01", fields["date"])
	}
	if fields["total"] != 7.5 {
		t.Errorf("Fields()[total] = %v, want 7.5", fields["total"])
	}
	if _, ok := fields["id"]; ok {
		t.Error("Fields() must not include the surrogate id")
	}
}
