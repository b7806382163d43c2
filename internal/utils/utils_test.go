package utils

import "testing"

func TestFormatAmount(t *testing.T) {
	cases := map[int64]string{
		0:       "IDR 0",
		250:     "IDR 250",
		1500000: "IDR 1.500.000",
		-2500:   "-IDR 2.500",
	}
	for in, want := range cases {
		if got := FormatAmount("IDR", in); got != want {
			t.Fatalf("FormatAmount(%d) = %q want %q", in, got, want)
		}
	}
}

func TestDateAndTimeChecks(t *testing.T) {
	if _, err := ParseDate(" 2026-11-02 "); err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if _, err := ParseDate("02/11/2026"); err == nil {
		t.Fatalf("expected error for a non ISO date")
	}
	if !ValidTimeHM("03:30") || ValidTimeHM("25:00") {
		t.Fatalf("ValidTimeHM mismatch")
	}
}

func TestLooksLikeEmail(t *testing.T) {
	for _, ok := range []string{"a@b.co", " traveler@example.com "} {
		if !LooksLikeEmail(ok) {
			t.Fatalf("%q should look like an email", ok)
		}
	}
	for _, bad := range []string{"", "a@", "@b.co", "a b@c.d", "nodomain@x"} {
		if LooksLikeEmail(bad) {
			t.Fatalf("%q should not look like an email", bad)
		}
	}
}

func TestSafeFilenamePart(t *testing.T) {
	if got := SafeFilenamePart("BK 12/3"); got != "BK_12_3" {
		t.Fatalf("got %q", got)
	}
	if got := SafeFilenamePart(""); got != "x" {
		t.Fatalf("got %q", got)
	}
}
