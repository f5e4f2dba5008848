package gadget

import (
	"errors"
	"strings"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{"Available", StatusAvailable, false},
		{"Deployed", StatusDeployed, false},
		{"Destroyed", StatusDestroyed, false},
		{"Decommissioned", StatusDecommissioned, false},
		{"available", "", true},
		{"Unknown", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStatus) {
					t.Fatalf("ParseStatus(%q) error = %v, want ErrInvalidStatus", tt.input, err)
				}
				if !strings.Contains(err.Error(), StatusList()) {
					t.Errorf("error %q should list the permitted values", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStatusList(t *testing.T) {
	want := "[Available, Deployed, Destroyed, Decommissioned]"
	if got := StatusList(); got != want {
		t.Errorf("StatusList() = %q, want %q", got, want)
	}
}

func TestUpdate_Validate(t *testing.T) {
	empty := ""
	ok := "The Kraken"
	long := strings.Repeat("x", MaxNameLength+1)
	exact := strings.Repeat("é", MaxNameLength)

	tests := []struct {
		name    string
		update  Update
		wantErr bool
	}{
		{"no fields", Update{}, false},
		{"valid name", Update{Name: &ok}, false},
		{"multibyte name at limit", Update{Name: &exact}, false},
		{"empty name", Update{Name: &empty}, true},
		{"name too long", Update{Name: &long}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.update.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Errorf("Validate() error = %v, want ErrInvalidName", err)
			}
		})
	}
}
