package internal

import (
	"strings"
	"testing"
	"time"

	"github.com/starford/okrtrack/internal/clock"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestClockConfig_Exclusive(t *testing.T) {
	cfg := ClockConfig{OverrideDate: "2025-02-12", OffsetDays: 3}
	if err := cfg.Validate(); err == nil {
		t.Fatal("override_date with offset_days should fail")
	}
}

func TestClockConfig_BadDate(t *testing.T) {
	cfg := ClockConfig{OverrideDate: "12/02/2025"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("malformed override_date should fail")
	}
}

func TestClockConfig_Base(t *testing.T) {
	cfg := ClockConfig{OverrideDate: "2025-02-12"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if got := cfg.Base().Now().Format("2006-01-02"); got != "2025-02-12" {
		t.Errorf("base date = %s, want 2025-02-12", got)
	}

	cfg = ClockConfig{OffsetDays: 7}
	if d := time.Until(cfg.Base().Now()); d < 6*24*time.Hour || d > 8*24*time.Hour {
		t.Errorf("offset base is %v ahead, want about a week", d)
	}

	cfg = ClockConfig{}
	if _, ok := cfg.Base().(clock.Real); !ok {
		t.Errorf("default base = %T, want clock.Real", cfg.Base())
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestEventsConfig_NegativeThrottle(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Events.DashboardThrottle = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative throttle should fail")
	}
}
