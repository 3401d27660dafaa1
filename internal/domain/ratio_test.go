package domain

import "testing"

func TestParseRatio(t *testing.T) {
	tests := []struct {
		input   string
		want    Ratio
		wantErr bool
	}{
		{input: "20", want: Ratio{Num: 20, Den: 1}},
		{input: " 10 ", want: Ratio{Num: 10, Den: 1}},
		{input: "3/2", want: Ratio{Num: 3, Den: 2}},
		{input: "6/4", want: Ratio{Num: 3, Den: 2}},
		{input: "1.5", want: Ratio{Num: 3, Den: 2}},
		{input: "0.25", want: Ratio{Num: 1, Den: 4}},
		{input: "0", want: Ratio{Num: 0, Den: 1}},
		{input: "", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "1/0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRatio(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRatio(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseRatio(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRatio_String(t *testing.T) {
	if got := IntRatio(20).String(); got != "20" {
		t.Errorf("String() = %q, want 20", got)
	}
	if got := (Ratio{Num: 3, Den: 2}).String(); got != "3/2" {
		t.Errorf("String() = %q, want 3/2", got)
	}
	if got := (Ratio{Num: 4}).String(); got != "4" {
		t.Errorf("zero denominator String() = %q, want 4", got)
	}
}

func TestRatio_IsPositive(t *testing.T) {
	if IntRatio(0).IsPositive() {
		t.Error("0 should not be positive")
	}
	if !(Ratio{Num: 1, Den: 100}).IsPositive() {
		t.Error("1/100 should be positive")
	}
}

func TestRatio_SetAndText(t *testing.T) {
	var r Ratio
	if err := r.Set("5/10"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if r != (Ratio{Num: 1, Den: 2}) {
		t.Errorf("Set() = %+v, want 1/2", r)
	}
	if r.Type() != "ratio" {
		t.Errorf("Type() = %q", r.Type())
	}

	text, err := r.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	var back Ratio
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText(%q) error = %v", text, err)
	}
	if back != r {
		t.Errorf("text round trip = %+v, want %+v", back, r)
	}
}

func TestNewRatio(t *testing.T) {
	r, err := NewRatio(10, 4)
	if err != nil {
		t.Fatalf("NewRatio() error = %v", err)
	}
	if r != (Ratio{Num: 5, Den: 2}) {
		t.Errorf("NewRatio(10, 4) = %+v", r)
	}
	if _, err := NewRatio(1, 0); err == nil {
		t.Error("expected error for zero denominator")
	}
	if _, err := NewRatio(-1, 2); err == nil {
		t.Error("expected error for negative numerator")
	}
}
