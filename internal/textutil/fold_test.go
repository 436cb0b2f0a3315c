package textutil

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Animal ", "animal"},
		{"SUBADULT", "subadult"},
		{"", ""},
		{"Café", "café"},
	}
	for _, tc := range tests {
		if got := Fold(tc.in); got != tc.want {
			t.Fatalf("Fold(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHeaderKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"EndTime EST", "endtimeest"},
		{"End Time  est", "endtimeest"},
		{"\ufeffsiteID", "siteid"},
	}
	for _, tc := range tests {
		if got := HeaderKey(tc.in); got != tc.want {
			t.Fatalf("HeaderKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonical(t *testing.T) {
	allowed := []string{"female", "male"}
	if got, ok := Canonical(" Male ", allowed); !ok || got != "male" {
		t.Fatalf("unexpected canonical value %q %v", got, ok)
	}
	if _, ok := Canonical("unknown", allowed); ok {
		t.Fatal("expected no match")
	}
	if _, ok := Canonical("", allowed); ok {
		t.Fatal("empty input must not match")
	}
}

func TestHasPrefixFold(t *testing.T) {
	if !HasPrefixFold("deploy1", "DEPLOY") {
		t.Fatal("expected case-insensitive prefix match")
	}
	if HasPrefixFold("SITE_A", "DEPLOY") {
		t.Fatal("unexpected prefix match")
	}
}
