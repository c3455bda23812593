package config

import "testing"

func TestDefaults(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := GetString("addr"); got != ":8080" {
		t.Errorf("addr default = %q, want :8080", got)
	}
	if got := GetInt("page-size"); got != 10 {
		t.Errorf("page-size default = %d, want 10", got)
	}
	if GetBool("log-json") {
		t.Error("log-json should default to false")
	}
}

func TestSetOverridesDefault(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	Set("addr", ":9090")
	if got := GetString("addr"); got != ":9090" {
		t.Errorf("addr after Set = %q, want :9090", got)
	}
	Set("page-size", 25)
	if got := GetInt("page-size"); got != 25 {
		t.Errorf("page-size after Set = %d, want 25", got)
	}
}
