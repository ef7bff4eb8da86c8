package tenant

import (
	"errors"
	"testing"
)

func TestFromBotToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{name: "standard", token: "123456:ABC-def", want: "123456"},
		{name: "no secret", token: "987", want: "987"},
		{name: "padded", token: "  42:x  ", want: "42"},
		{name: "empty", token: "", wantErr: true},
		{name: "missing id", token: ":secret", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromBotToken(tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Fatalf("expected ErrInvalidToken, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != tt.want {
				t.Errorf("expected id %q, got %q", tt.want, got.ID)
			}
		})
	}
}
