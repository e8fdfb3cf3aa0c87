// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exactly max", "hello", 5, "hello"},
		{"needs truncation", "hello world", 8, "hello..."},
		{"zero max", "hello", 0, ""},
		{"negative max", "hello", -1, ""},
		{"tiny max no ellipsis", "hello", 2, "he"},
		{"multibyte runes", "日本語のテキスト", 6, "日本語..."},
		{"empty string", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateRunes(tt.input, tt.maxRunes)
			if got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.want)
			}
		})
	}
}

func TestTruncateWidthCJK(t *testing.T) {
	// Each CJK rune is 2 cells wide. "日本語" is 6 cells.
	if got := TruncateWidth("日本語", 6); got != "日本語" {
		t.Errorf("no truncation expected, got %q", got)
	}
	got := TruncateWidth("日本語テキスト", 8)
	if StringWidth(got) > 8 {
		t.Errorf("truncated width %d exceeds 8 (%q)", StringWidth(got), got)
	}
	if got == "日本語テキスト" {
		t.Error("expected truncation for width 8")
	}
}

func TestTruncateWidthASCII(t *testing.T) {
	if got := TruncateWidth("hello world", 8); got != "hello..." {
		t.Errorf("got %q, want %q", got, "hello...")
	}
	if got := TruncateWidth("hi", 8); got != "hi" {
		t.Errorf("got %q, want %q", got, "hi")
	}
	if got := TruncateWidth("hello", 0); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("got %q", got)
	}
	if got := PadRight("abcdef", 5); got != "abcdef" {
		t.Errorf("wide input should pass through, got %q", got)
	}
	// CJK padding uses display width, not rune count.
	if got := PadRight("日本", 6); StringWidth(got) != 6 {
		t.Errorf("padded width = %d, want 6", StringWidth(got))
	}
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("  first line  \nsecond"); got != "first line" {
		t.Errorf("got %q", got)
	}
	if got := FirstLine("only"); got != "only" {
		t.Errorf("got %q", got)
	}
}

func TestRuneLen(t *testing.T) {
	if got := RuneLen("日本語"); got != 3 {
		t.Errorf("RuneLen = %d, want 3", got)
	}
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "data.json")

	if err := AtomicWriteFile(path, []byte("first"), 0600); err != nil {
		t.Fatalf("AtomicWriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "first" {
		t.Errorf("content = %q, want %q", data, "first")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}

	// Overwrite must replace content, not append.
	if err := AtomicWriteFile(path, []byte("second"), 0600); err != nil {
		t.Fatalf("AtomicWriteFile overwrite: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("content after overwrite = %q, want %q", data, "second")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only target file in dir, found %d entries", len(entries))
	}
}
