package validation

import (
	"testing"
	"time"
)

func TestNRIC(t *testing.T) {
	valid := []string{"S1234567A", "T0123456Z", "F7654321B", "G1111111K"}
	for _, v := range valid {
		if verr := NRIC(v); verr != nil {
			t.Errorf("NRIC(%q) unexpected error: %v", v, verr)
		}
	}
	invalid := []string{"", "A1234567B", "S123456A", "S12345678", "1234567"}
	for _, v := range invalid {
		if verr := NRIC(v); verr == nil {
			t.Errorf("NRIC(%q) expected error, got nil", v)
		}
	}
}

func TestNRICLowercaseAccepted(t *testing.T) {
	if verr := NRIC("s1234567a"); verr != nil {
		t.Errorf("lowercase NRIC should be accepted after uppercasing: %v", verr)
	}
}

func TestPostalCode(t *testing.T) {
	if verr := PostalCode("238801"); verr != nil {
		t.Errorf("unexpected error: %v", verr)
	}
	for _, v := range []string{"", "23880", "2388011", "23880a"} {
		if verr := PostalCode(v); verr == nil {
			t.Errorf("PostalCode(%q) expected error, got nil", v)
		}
	}
}

func TestMobile(t *testing.T) {
	for _, v := range []string{"81234567", "98765432"} {
		if verr := Mobile(v); verr != nil {
			t.Errorf("Mobile(%q) unexpected error: %v", v, verr)
		}
	}
	for _, v := range []string{"", "71234567", "8123456", "812345678"} {
		if verr := Mobile(v); verr == nil {
			t.Errorf("Mobile(%q) expected error, got nil", v)
		}
	}
}

func TestEmail(t *testing.T) {
	if verr := Email("john.tan@example.com"); verr != nil {
		t.Errorf("unexpected error: %v", verr)
	}
	for _, v := range []string{"", "john", "john@", "john@example", "jo hn@example.com"} {
		if verr := Email(v); verr == nil {
			t.Errorf("Email(%q) expected error, got nil", v)
		}
	}
}

func TestDateOfBirth(t *testing.T) {
	if verr := DateOfBirth("15-06-1990"); verr != nil {
		t.Errorf("unexpected error: %v", verr)
	}
	if verr := DateOfBirth("29-02-2000"); verr != nil {
		t.Errorf("leap day should be valid: %v", verr)
	}
}

func TestDateOfBirthImpossibleDate(t *testing.T) {
	// Matches the format but is not a real calendar date.
	verr := DateOfBirth("31-02-1990")
	if verr == nil {
		t.Fatal("expected error for 31-02-1990")
	}
	if verr.Message != "Please provide a valid date" {
		t.Errorf("unexpected message: %q", verr.Message)
	}
}

func TestDateOfBirthBounds(t *testing.T) {
	future := time.Now().AddDate(1, 0, 0).Format(DateLayout)
	if verr := DateOfBirth(future); verr == nil {
		t.Error("expected error for future date of birth")
	}
	tooOld := time.Now().AddDate(-101, 0, 0).Format(DateLayout)
	if verr := DateOfBirth(tooOld); verr == nil {
		t.Error("expected error for date of birth more than 100 years ago")
	}
	if verr := DateOfBirth("15/06/1990"); verr == nil {
		t.Error("expected error for slash-separated date")
	}
}

func TestFullName(t *testing.T) {
	for _, v := range []string{"John Tan", "Mary Jane Lee", "Al"} {
		if verr := FullName(v); verr != nil {
			t.Errorf("FullName(%q) unexpected error: %v", v, verr)
		}
	}
	for _, v := range []string{"", "J", "John123", "John-Tan", "O'Brien"} {
		if verr := FullName(v); verr == nil {
			t.Errorf("FullName(%q) expected error, got nil", v)
		}
	}
}

func TestUnitNumber(t *testing.T) {
	for _, v := range []string{"01-123", "12-3456"} {
		if verr := UnitNumber(v); verr != nil {
			t.Errorf("UnitNumber(%q) unexpected error: %v", v, verr)
		}
	}
	for _, v := range []string{"", "1-123", "01-12", "01-12345", "01123"} {
		if verr := UnitNumber(v); verr == nil {
			t.Errorf("UnitNumber(%q) expected error, got nil", v)
		}
	}
}

func TestRequired(t *testing.T) {
	if verr := Required("Orchard Road", "Street name"); verr != nil {
		t.Errorf("unexpected error: %v", verr)
	}
	verr := Required("   ", "Street name")
	if verr == nil {
		t.Fatal("expected error for blank value")
	}
	if verr.Message != "Street name is required" {
		t.Errorf("unexpected message: %q", verr.Message)
	}
}

func TestMaskNRIC(t *testing.T) {
	if got := MaskNRIC("S1234567A"); got != "***567A" {
		t.Errorf("MaskNRIC(S1234567A) = %q, want ***567A", got)
	}
	if got := MaskNRIC("s1234567a"); got != "***567A" {
		t.Errorf("MaskNRIC should uppercase, got %q", got)
	}
	if got := MaskNRIC("ab"); got != "ab" {
		t.Errorf("short values pass through, got %q", got)
	}
}

func TestWorkingDaysFrom(t *testing.T) {
	// Friday 04 Jul 2025. One working day ahead skips the weekend to Monday.
	friday := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
	got := WorkingDaysFrom(friday, 1)
	want := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WorkingDaysFrom(Friday, 1) = %v, want %v", got, want)
	}

	// 14 working days from Tuesday 01 Jul 2025 is Monday 21 Jul 2025.
	tuesday := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	got = WorkingDaysFrom(tuesday, 14)
	want = time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WorkingDaysFrom(Tuesday, 14) = %v, want %v", got, want)
	}
}

func TestStartDateFromContractEnd(t *testing.T) {
	start, err := StartDateFromContractEnd("31-08-2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
	if _, err := StartDateFromContractEnd("not-a-date"); err == nil {
		t.Error("expected error for unparseable contract end date")
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "21 Jul 2025" {
		t.Errorf("FormatDate = %q, want 21 Jul 2025", got)
	}
}
