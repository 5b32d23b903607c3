package utils

import (
	"strings"
	"testing"
)

func TestStringToInt(t *testing.T) {
	cases := map[string]int{
		"7":    7,
		"0":    0,
		"-3":   -3,
		"":     0,
		"abc":  0,
		"1.5":  0,
		" 12 ": 0,
	}
	for in, want := range cases {
		if got := StringToInt(in); got != want {
			t.Errorf("StringToInt(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("the hash must not be the plaintext")
	}
	if !CheckPasswordHash("secret123", hash) {
		t.Error("the right password should verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("a wrong password should not verify")
	}
}

func TestRenderMarkdown(t *testing.T) {
	html := string(RenderMarkdown("**bold** text"))
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("markdown emphasis missing: %q", html)
	}

	// Script tags never survive sanitization.
	html = string(RenderMarkdown("hi <script>alert(1)</script>"))
	if strings.Contains(html, "<script>") {
		t.Errorf("unsanitized markup leaked: %q", html)
	}
}
