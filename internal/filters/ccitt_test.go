package filters

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGetBoolParam(t *testing.T) {
	tests := []struct {
		name         string
		params       Params
		defaultValue bool
		want         bool
	}{
		{"nil params", nil, false, false},
		{"missing key", Params{"Columns": 1728}, true, true},
		{"true value", Params{"BlackIs1": true}, false, true},
		{"false value", Params{"BlackIs1": false}, true, false},
		{"wrong type returns default", Params{"BlackIs1": "true"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getBoolParam(tt.params, "BlackIs1", tt.defaultValue); got != tt.want {
				t.Errorf("getBoolParam() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCCITTFaxDecodeRejectsMixed2D(t *testing.T) {
	if _, err := CCITTFaxDecode([]byte{0x00}, Params{"K": 4}); err == nil {
		t.Error("expected error for K > 0")
	}
}

func TestRunLengthDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    []byte
		wantErr bool
	}{
		{"literal", []byte{2, 'a', 'b', 'c', 128}, []byte("abc"), false},
		{"repeat", []byte{254, 'x', 128}, []byte("xxx"), false},
		{"mixed", []byte{0, 'a', 255, 'b', 1, 'c', 'd'}, []byte("abbcd"), false},
		{"stops at EOD", []byte{0, 'a', 128, 0, 'z'}, []byte("a"), false},
		{"empty", nil, nil, false},
		{"literal overrun", []byte{5, 'a'}, nil, true},
		{"repeat without byte", []byte{200}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RunLengthDecode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("RunLengthDecode() error = %v", err)
			}
			if diff := cmp.Diff(string(tt.want), string(got)); diff != "" {
				t.Errorf("RunLengthDecode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
