package matching

import (
	"testing"
)

func TestNormalizeNameStripsQualifiers(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Eagle Rare 10 Year 750ml", "eagle rare 10 year"},
		{"Tito's Handmade Vodka 1.75L", "titos handmade vodka"},
		{"Old Grand-Dad 80 Proof", "old grand dad"},
		{"Buffalo Trace Limited Edition Gift Set", "buffalo trace"},
		{"  High Noon 12oz 4pk  ", "high noon"},
	}
	for _, c := range cases {
		if got := NormalizeName(c.in); got != c.want {
			t.Fatalf("NormalizeName(%q): want %q got %q", c.in, c.want, got)
		}
	}
}

func TestNormalizeNameFoldsDiacritics(t *testing.T) {
	if got := NormalizeName("Jägermeister"); got != "jagermeister" {
		t.Fatalf("diacritics: want %q got %q", "jagermeister", got)
	}
	if got := NormalizeName("Château Margaux"); got != "chateau margaux" {
		t.Fatalf("diacritics: want %q got %q", "chateau margaux", got)
	}
}

func TestNormalizeUPC(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"012345678905", "12345678905"},
		{" 0 12345678905 ", "12345678905"},
		{"88765", "88765"},
		{"000", ""},
	}
	for _, c := range cases {
		if got := NormalizeUPC(c.in); got != c.want {
			t.Fatalf("NormalizeUPC(%q): want %q got %q", c.in, c.want, got)
		}
	}
}

func TestSortTokens(t *testing.T) {
	if got := sortTokens("reserve eagle rare"); got != "eagle rare reserve" {
		t.Fatalf("sortTokens: want %q got %q", "eagle rare reserve", got)
	}
}
