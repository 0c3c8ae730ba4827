package validation

import "testing"

type sampleRequest struct {
	Email  string  `json:"email" validate:"required,email"`
	Name   string  `json:"name" validate:"required,min=2"`
	Total  float64 `json:"total" validate:"required,gt=0"`
	Status string  `json:"status" validate:"omitempty,oneof=Present Absent"`
	Date   string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func TestValidateStructPasses(t *testing.T) {
	v := NewValidator()
	req := sampleRequest{Email: "a@b.com", Name: "Alice", Total: 50}
	if err := v.ValidateStruct(req); err != nil {
		t.Errorf("expected valid struct, got %v", err)
	}
}

func TestValidateStructCollectsFieldErrors(t *testing.T) {
	v := NewValidator()
	req := sampleRequest{Email: "not-an-email", Name: "A", Total: -5, Status: "Late", Date: "31-08-2026"}

	err := v.ValidateStruct(req)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	fields := FormatValidationErrors(err)
	if fields["email"] != "Invalid email format" {
		t.Errorf("email error = %q", fields["email"])
	}
	if fields["name"] == "" {
		t.Error("expected an error for name")
	}
	if fields["total"] != "Total must be greater than 0" {
		t.Errorf("total error = %q", fields["total"])
	}
	if fields["status"] == "" {
		t.Error("expected an error for status")
	}
	if fields["date"] != "Date must be a valid date in 2006-01-02 format" {
		t.Errorf("date error = %q", fields["date"])
	}
}

func TestFormatValidationErrorsNonValidationError(t *testing.T) {
	fields := FormatValidationErrors(errTest{})
	if fields["_"] == "" {
		t.Error("non-validation errors should land under the _ key")
	}
}

type errTest struct{}

func (errTest) Error() string { return "boom" }

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.co", "user.name+tag@example.org"}
	invalid := []string{"", "plain", "@nouser.com", "user@", "user@host"}

	for _, e := range valid {
		if !ValidateEmail(e) {
			t.Errorf("ValidateEmail(%q) = false, want true", e)
		}
	}
	for _, e := range invalid {
		if ValidateEmail(e) {
			t.Errorf("ValidateEmail(%q) = true, want false", e)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Errorf("SanitizeString = %q", got)
	}
}
