package otp

import "testing"

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), CodeLength)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit %q", code, r)
			}
		}
		seen[code] = true
	}
	// 50 draws from a million values colliding every time would mean a
	// broken generator.
	if len(seen) < 2 {
		t.Error("GenerateCode returned the same code repeatedly")
	}
}

func TestCacheKeys(t *testing.T) {
	if got := RegistrationKey("+201234567890"); got != "verification-+201234567890" {
		t.Errorf("RegistrationKey = %q", got)
	}
	if got := EmailVerifiedKey("a@b.com"); got != "otp-verified-a@b.com" {
		t.Errorf("EmailVerifiedKey = %q", got)
	}
	if got := PasswordResetKey("a@b.com"); got != "pass-a@b.com" {
		t.Errorf("PasswordResetKey = %q", got)
	}
}
