//go:build windows

package process

import "testing"

func TestUTF16BytesToString(t *testing.T) {
	// "ab" encoded little-endian UTF-16.
	raw := []byte{'a', 0, 'b', 0}
	if got := utf16BytesToString(raw); got != "ab" {
		t.Logf("expected %q, got %q", "ab", got)
		t.Fail()
	}
}

func TestUTF16BytesToStringEmpty(t *testing.T) {
	if got := utf16BytesToString(nil); got != "" {
		t.Logf("expected empty string, got %q", got)
		t.Fail()
	}
}
