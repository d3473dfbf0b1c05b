package refdata

import (
	"strings"
	"testing"
)

func TestResolveTrackingURL(t *testing.T) {
	url, ok := ResolveTrackingURL("maersk", "MAEU123456789")
	if !ok {
		t.Fatal("expected a tracking URL for maersk")
	}
	if !strings.Contains(url, "MAEU123456789") {
		t.Fatalf("BL number not substituted: %s", url)
	}
	if strings.Contains(url, "%s") {
		t.Fatalf("template placeholder left in URL: %s", url)
	}

	if _, ok := ResolveTrackingURL("UNKNOWN LINE", "BL1"); ok {
		t.Fatal("unknown line must not resolve")
	}
	if _, ok := ResolveTrackingURL("MSC", ""); ok {
		t.Fatal("empty BL number must not resolve")
	}
}

func TestResolvePortCode(t *testing.T) {
	code, ok := ResolvePortCode(" nhava sheva ")
	if !ok || code != "INNSA1" {
		t.Fatalf("ResolvePortCode = %q, %v", code, ok)
	}
	if _, ok := ResolvePortCode("ATLANTIS"); ok {
		t.Fatal("unknown port must not resolve")
	}
}

func TestResolveCustomHouseCode(t *testing.T) {
	code, ok := ResolveCustomHouseCode("ICD Sanand")
	if !ok || code != "INSAU6" {
		t.Fatalf("ResolveCustomHouseCode = %q, %v", code, ok)
	}
}
