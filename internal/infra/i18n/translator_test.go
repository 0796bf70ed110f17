//go:build !integration

package i18n

import "testing"

func TestTranslator(t *testing.T) {
	contentBytes := []byte("greeting: hello\nwelcome_clinic: welcome to %s in %s")

	translator, err := newTranslatorFromBytes(contentBytes)
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		got := translator.T("greeting")
		if got != "hello" {
			t.Errorf("wanted 'hello', got '%s'", got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		got := translator.T("nonexistent_key")
		if got != "nonexistent_key" {
			t.Errorf("wanted the key back, got '%s'", got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		got := translator.T("welcome_clinic", "Sunrise Clinic", "Lagos")
		want := "welcome to Sunrise Clinic in Lagos"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})
}

func TestTranslatorEmbeddedCatalog(t *testing.T) {
	translator, err := NewTranslator(LocalesFS, "en")
	if err != nil {
		t.Fatalf("NewTranslator failed on embedded catalog: %v", err)
	}
	for _, key := range []string{
		"welcome_message", "booking_instructions", "booking_confirm",
		"booking_invalid", "emergency_concern", "error_unauthorized",
		"media_fallback_image", "media_disclaimer",
	} {
		if got := translator.T(key); got == key {
			t.Errorf("embedded catalog is missing key %q", key)
		}
	}
}
