package validator

import (
	"errors"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"123e4567-e89b-12d3-a456-426614174000",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"urn:uuid:123e4567-e89b-12d3-a456-426614174000",
		"",
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		if _, ok := IsValidDate(s); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDate(s); ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidIDNumber(t *testing.T) {
	valid := []string{"110101199003071234", "11010119900307123X", "11010119900307123x"}
	invalid := []string{"11010119900307123", "1101011990030712345", "11010119900307123Y", "abcdefghijklmnopqr"}
	for _, id := range valid {
		if !IsValidIDNumber(id) {
			t.Errorf("IsValidIDNumber(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidIDNumber(id) {
			t.Errorf("IsValidIDNumber(%q) = true, want false", id)
		}
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	valid := []string{"13800138000", "+8613800138000", "138-0013-8000", "138 0013 8000", "8619912345678"}
	invalid := []string{"12800138000", "1380013800", "138001380001", "abc13800138", ""}
	for _, phone := range valid {
		if !IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = false, want true", phone)
		}
	}
	for _, phone := range invalid {
		if IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = true, want false", phone)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+86 138-0013-8000": "13800138000",
		"8613800138000":     "13800138000",
		"13800138000":       "13800138000",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasDuplicates(t *testing.T) {
	if HasDuplicates([]string{"a", "b"}) {
		t.Errorf("HasDuplicates([a b]) = true, want false")
	}
	if !HasDuplicates([]string{"a", "b", "a"}) {
		t.Errorf("HasDuplicates([a b a]) = false, want true")
	}
}

func TestIsNonNegativeDecimal(t *testing.T) {
	if d, ok := IsNonNegativeDecimal("1.50"); !ok || d.String() != "1.5" {
		t.Errorf("IsNonNegativeDecimal(1.50) = %v, %v", d, ok)
	}
	for _, s := range []string{"-1", "abc", ""} {
		if _, ok := IsNonNegativeDecimal(s); ok {
			t.Errorf("IsNonNegativeDecimal(%q) = true, want false", s)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "base_id", Message: "invalid"},
		{Field: "job_id", Message: "required"},
	}
	got := errs.Error()
	want := "base_id: invalid; job_id: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	var errs ValidationErrors
	errs.Add("base_id", "invalid")
	errs.Add("job_id", "required")
	errs.Add("job_id", "must be a UUID")

	got := errs.ToMap()
	want := map[string]string{"base_id": "invalid", "job_id": "required; must be a UUID"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestValidationErrors_Err(t *testing.T) {
	var errs ValidationErrors
	if errs.Err() != nil {
		t.Errorf("empty ValidationErrors.Err() should be nil")
	}

	errs.Add("x", "bad")
	var target ValidationErrors
	if !errors.As(errs.Err(), &target) || len(target) != 1 {
		t.Errorf("ValidationErrors.Err() should unwrap to ValidationErrors")
	}
}
