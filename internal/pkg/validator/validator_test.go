package validator

import (
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

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // v7
		"9f4b2f1e-5c3a-4e8d-9b1a-2c3d4e5f6a7b", // v4
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // uppercase
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"0188d0f2-7b8c-9b4a-8a2b-6b8b8b8b8b8b", // bad version nibble
		"",
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidDateTime(t *testing.T) {
	valid := []string{"2024-01-15T10:30:00Z", "2024-01-15T10:30:00+07:00"}
	invalid := []string{"2024-01-15", "10:30:00", "", "2024-01-15 10:30:00"}
	for _, s := range valid {
		_, ok := IsValidDateTime(s)
		if !ok {
			t.Errorf("IsValidDateTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDateTime(s)
		if ok {
			t.Errorf("IsValidDateTime(%q) = true, want false", s)
		}
	}
}

func TestIsValidVerificationCode(t *testing.T) {
	valid := []string{"RCP-20240131235959-0A1B2C3D", "RCP-20260901120000-FFFFFFFF"}
	invalid := []string{
		"RCP-20240131235959",            // missing suffix
		"rcp-20240131235959-0a1b2c3d",   // lowercase
		"RCP-2024013123595-0A1B2C3D",    // short timestamp
		"RCP-20240131235959-0A1B2C3",    // short suffix
		"XYZ-20240131235959-0A1B2C3D",   // wrong prefix
		"",
	}
	for _, code := range valid {
		if !IsValidVerificationCode(code) {
			t.Errorf("IsValidVerificationCode(%q) = false, want true", code)
		}
	}
	for _, code := range invalid {
		if IsValidVerificationCode(code) {
			t.Errorf("IsValidVerificationCode(%q) = true, want false", code)
		}
	}
}
