package langdetect

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode string
	}{
		{"english sentence", "Could you help me draft an email to my landlord about the broken heater?", "en"},
		{"chinese sentence", "请帮我写一封关于维修暖气的邮件", "zh"},
		{"spanish sentence", "Por favor, ayúdame a escribir un correo sobre la calefacción estropeada", "es"},
		{"empty input", "", "auto"},
		{"whitespace input", "   \t", "auto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, name := Detect(tt.text)
			if code != tt.wantCode {
				t.Errorf("Detect(%q) code = %q, want %q", tt.text, code, tt.wantCode)
			}
			if tt.wantCode != "auto" && name == "" {
				t.Errorf("Detect(%q) returned empty display name", tt.text)
			}
		})
	}
}
