package core

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+15551234567", "+15551234567"},
		{"+1 (555) 123-4567", "+15551234567"},
		{" +1 555.123.4567 ", "+15551234567"},
		{"15551234567", "15551234567"},
		{"555 1234", "5551234"},
		{"++15551234567", "+15551234567"},
		{"1+555", "1555"},
		{"abc", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizePhone(c.in); got != c.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{"+1 (555) 123-4567", "555-1234", "+44 20 7946 0958", ""}
	for _, in := range inputs {
		once := NormalizePhone(in)
		if twice := NormalizePhone(once); twice != once {
			t.Errorf("NormalizePhone not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestMaskPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+15551234567", "+15*******67"},
		{"5551234567", "55******67"},
		{"+1234", "+****"},
		{"12", "**"},
		{"", ""},
	}
	for _, c := range cases {
		if got := MaskPhone(c.in); got != c.want {
			t.Errorf("MaskPhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	if MaskPhone("+15551234567") == "+15551234567" {
		t.Fatalf("masked output must differ from input")
	}
}
