package commsutil

import (
	"errors"
	"testing"
)

type settingArgs struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func TestEncodePayload(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    string
		wantErr bool
	}{
		{"struct tuple", settingArgs{Key: "theme", Value: "dark"}, `{"key":"theme","value":"dark"}`, false},
		{"empty tuple", struct{}{}, `{}`, false},
		{"nil", nil, "null", false},
		{"channel is not serializable", make(chan int), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodePayload(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("commsutil:codec_test - expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("commsutil:codec_test - unexpected error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("commsutil:codec_test - EncodePayload() = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	var args settingArgs
	if err := DecodePayload([]byte(`{"key":"theme","value":"dark"}`), &args); err != nil {
		t.Fatalf("commsutil:codec_test - unexpected error: %v", err)
	}
	if args.Key != "theme" || args.Value != "dark" {
		t.Errorf("commsutil:codec_test - decoded %+v", args)
	}
}

func TestDecodePayload_EmptyIsZeroValue(t *testing.T) {
	args := settingArgs{Key: "kept"}
	if err := DecodePayload(nil, &args); err != nil {
		t.Fatalf("commsutil:codec_test - unexpected error: %v", err)
	}
	if args.Key != "kept" {
		t.Errorf("commsutil:codec_test - empty payload modified target: %+v", args)
	}
}

func TestDecodePayload_Invalid(t *testing.T) {
	var args settingArgs
	err := DecodePayload([]byte(`{invalid}`), &args)
	if err == nil {
		t.Fatal("commsutil:codec_test - expected error but got nil")
	}
	var target interface{ Unwrap() error }
	if !errors.As(err, &target) {
		t.Errorf("commsutil:codec_test - expected wrapped error, got %T", err)
	}
}
