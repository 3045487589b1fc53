package infra

import "testing"

func TestLoadConfigRequiresDatabaseAndSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig succeeded without DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/app")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig succeeded without JWT_SECRET")
	}

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port default = %q", cfg.Port)
	}
	if cfg.DefaultLocale != "en" {
		t.Fatalf("DefaultLocale default = %q", cfg.DefaultLocale)
	}
	if cfg.RateLimitPerMin != 60 {
		t.Fatalf("RateLimitPerMin default = %d", cfg.RateLimitPerMin)
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" https://a.example , ,https://b.example")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("splitCSV = %v", got)
	}
}
