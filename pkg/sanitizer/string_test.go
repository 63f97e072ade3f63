package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "multiple spaces",
			input: "hello    world",
			want:  "hello world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\nworld",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Priya Sharma  ", "Priya Sharma"},
		{"collapse inner whitespace", "Priya \t  Sharma", "Priya Sharma"},
		{"control characters dropped", "Priya\x00 Sharma\x1b", "Priya Sharma"},
		{"unicode preserved", " José Müller ", "José Müller"},
		{"idempotent", "Priya Sharma", "Priya Sharma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeEmployeeID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{" emp 001 ", "EMP001"},
		{"emp-042", "EMP-042"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeEmployeeID(tt.input); got != tt.want {
			t.Errorf("SanitizeEmployeeID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeAudience(t *testing.T) {
	if got := SanitizeAudience("  All "); got != "all" {
		t.Errorf("SanitizeAudience() = %q, want %q", got, "all")
	}
	if got := SanitizeAudience("Floor  14"); got != "floor 14" {
		t.Errorf("SanitizeAudience() = %q, want %q", got, "floor 14")
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"keeps line breaks", "Line one\nLine two", "Line one\nLine two"},
		{"normalizes windows newlines", "a\r\nb", "a\nb"},
		{"trims each line", "  a  \n   b", "a\nb"},
		{"collapses blank runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"trims outer blank lines", "\n\nhello\n\n", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
