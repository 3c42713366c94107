package version

import "testing"

func TestVersion(t *testing.T) {
	if GetVersion() != "0.1.0" {
		t.Fatalf("unexpected version: %v", GetVersion())
	}
	if GetBaseVersion() != "0.1" {
		t.Fatalf("unexpected base version: %v", GetBaseVersion())
	}
}
