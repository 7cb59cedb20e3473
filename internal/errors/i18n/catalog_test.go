package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	if GetCatalog("") != base {
		t.Fatal("expected empty locale to fall back to en-US")
	}
	if GetCatalog("missing-locale") != base {
		t.Fatal("expected unknown locale to fall back to en-US")
	}
}

func TestFormatRendersMetadata(t *testing.T) {
	cat := GetCatalog("en-US")

	got := cat.Format(CodeBelowMinimumWithdrawal, map[string]string{
		"Amount":  "5",
		"Minimum": "10000000",
	})
	if got == "" || got == CodeBelowMinimumWithdrawal {
		t.Fatalf("expected rendered message, got %q", got)
	}
}

func TestFormatUnknownCodeFallsBack(t *testing.T) {
	cat := GetCatalog("en-US")
	if got := cat.Format("NO_SUCH_CODE", nil); got != "An unexpected error occurred" {
		t.Fatalf("unknown code message = %q", got)
	}
}
