package engine

import "testing"

func TestExtractNRIC(t *testing.T) {
	got, ok := Extract(FieldNRIC, "sure, my nric is s1234567a thanks")
	if !ok {
		t.Fatal("expected NRIC to be extracted")
	}
	if got != "S1234567A" {
		t.Errorf("got %q, want S1234567A", got)
	}
	if _, ok := Extract(FieldNRIC, "I don't remember"); ok {
		t.Error("expected no NRIC match")
	}
}

func TestExtractPostalCode(t *testing.T) {
	got, ok := Extract(FieldPostalCode, "postal code is 238801")
	if !ok || got != "238801" {
		t.Errorf("got %q ok=%v, want 238801", got, ok)
	}
}

func TestExtractMobile(t *testing.T) {
	got, ok := Extract(FieldMobile, "call me at 91234567 anytime")
	if !ok || got != "91234567" {
		t.Errorf("got %q ok=%v, want 91234567", got, ok)
	}
	if _, ok := Extract(FieldMobile, "call me at 71234567"); ok {
		t.Error("numbers not starting with 8 or 9 should not match")
	}
}

func TestExtractEmail(t *testing.T) {
	got, ok := Extract(FieldEmail, "it's john.tan@example.com please")
	if !ok || got != "john.tan@example.com" {
		t.Errorf("got %q ok=%v", got, ok)
	}
}

func TestExtractDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"15-06-1990", "15-06-1990"},
		{"15/06/1990", "15-06-1990"},
		{"5-6-1990", "05-06-1990"},
		{"1990-06-15", "15-06-1990"},
		{"1990/06/15", "15-06-1990"},
		{"born on 15-06-1990 in SG", "15-06-1990"},
	}
	for _, c := range cases {
		got, ok := Extract(FieldDateOfBirth, c.in)
		if !ok {
			t.Errorf("Extract(date, %q): no match", c.in)
			continue
		}
		if got != c.want {
			t.Errorf("Extract(date, %q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractDateImpossibleStillExtracts(t *testing.T) {
	// Extraction is shape-only; the validator is the one that rejects this.
	got, ok := Extract(FieldDateOfBirth, "31-02-1990")
	if !ok || got != "31-02-1990" {
		t.Errorf("got %q ok=%v, want 31-02-1990", got, ok)
	}
}

func TestExtractUnitNumber(t *testing.T) {
	got, ok := Extract(FieldUnitNumber, "unit 01-123 please")
	if !ok || got != "01-123" {
		t.Errorf("got %q ok=%v, want 01-123", got, ok)
	}
	got, ok = Extract(FieldUnitNumber, "12-3456")
	if !ok || got != "12-3456" {
		t.Errorf("got %q ok=%v, want 12-3456", got, ok)
	}
}

func TestExtractFreeText(t *testing.T) {
	got, ok := Extract(FieldFreeText, "  John Tan  ")
	if !ok || got != "John Tan" {
		t.Errorf("got %q ok=%v, want trimmed John Tan", got, ok)
	}
	if _, ok := Extract(FieldFreeText, "   "); ok {
		t.Error("blank input should not extract")
	}
}
