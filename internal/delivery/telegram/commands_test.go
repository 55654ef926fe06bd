package telegram

import (
	"errors"
	"testing"
)

func TestParseItemCodeArg(t *testing.T) {
	tests := []struct {
		args    string
		want    string
		wantErr bool
	}{
		{"10312", "10312", false},
		{"  10312  ", "10312", false},
		{"lego-set-10312", "lego-set-10312", false},
		{"", "", true},
		{"   ", "", true},
	}
	for _, tt := range tests {
		got, err := ParseItemCodeArg(tt.args)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidArguments) {
				t.Errorf("ParseItemCodeArg(%q) err = %v, want ErrInvalidArguments", tt.args, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseItemCodeArg(%q) err = %v", tt.args, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseItemCodeArg(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestParseChannelIDArg(t *testing.T) {
	tests := []struct {
		args    string
		want    int64
		wantErr bool
	}{
		{"-1001234567890", -1001234567890, false},
		{"  42  ", 42, false},
		{"", 0, true},
		{"0", 0, true},
		{"abc", 0, true},
		{"12.5", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseChannelIDArg(tt.args)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidArguments) {
				t.Errorf("ParseChannelIDArg(%q) err = %v, want ErrInvalidArguments", tt.args, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseChannelIDArg(%q) err = %v", tt.args, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseChannelIDArg(%q) = %d, want %d", tt.args, got, tt.want)
		}
	}
}
