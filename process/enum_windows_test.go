//go:build windows

package process

import "testing"

func TestEqualFoldASCII(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"chromium.exe", "Chromium.EXE", true},
		{"chromium.exe", "chromium.exe", true},
		{"chromium.exe", "notepad.exe", false},
		{"short", "shorter", false},
		{"", "", true},
	}
	for _, c := range cases {
		if got := equalFoldASCII(c.a, c.b); got != c.want {
			t.Logf("equalFoldASCII(%q, %q): expected %v, got %v", c.a, c.b, c.want, got)
			t.Fail()
		}
	}
}
