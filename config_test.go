package ward

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNormalizeConfigFillsDefaults(t *testing.T) {
	cfg := Config{}
	normalizeConfig(&cfg)

	if cfg.Tokens.LinkTTL != 24*time.Hour {
		t.Fatalf("link ttl = %v", cfg.Tokens.LinkTTL)
	}
	if cfg.Totp.Digits != 6 || cfg.Totp.Period != 30 || cfg.Totp.Skew != 1 {
		t.Fatalf("totp = %+v", cfg.Totp)
	}
	if cfg.Password.Memory == 0 || cfg.Password.KeyLength == 0 {
		t.Fatalf("password = %+v", cfg.Password)
	}
	if cfg.Mail.ConfirmEmail.Subject == "" || cfg.Mail.ConfirmEmail.Text == "" {
		t.Fatalf("confirm email template = %+v", cfg.Mail.ConfirmEmail)
	}
	if cfg.Links.BaseURL == "" || cfg.Links.ResetPasswordPath == "" {
		t.Fatalf("links = %+v", cfg.Links)
	}
	if cfg.Audit.BufferSize <= 0 {
		t.Fatalf("audit buffer = %d", cfg.Audit.BufferSize)
	}
}

func TestNormalizeConfigKeepsExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.Totp.Digits = 8
	cfg.Links.BaseURL = "https://id.example.com/"
	cfg.Mail.ConfirmEmail = MailTemplate{Subject: "Hi", HTML: "<b>{{link}}</b>"}
	normalizeConfig(&cfg)

	if cfg.Totp.Digits != 8 {
		t.Fatalf("digits = %d", cfg.Totp.Digits)
	}
	if cfg.Links.BaseURL != "https://id.example.com" {
		t.Fatalf("base url = %q, trailing slash must be trimmed", cfg.Links.BaseURL)
	}
	if cfg.Mail.ConfirmEmail.Subject != "Hi" {
		t.Fatalf("subject = %q", cfg.Mail.ConfirmEmail.Subject)
	}
	// A template with an HTML body does not get the default text body.
	if cfg.Mail.ConfirmEmail.Text != "" {
		t.Fatalf("text = %q", cfg.Mail.ConfirmEmail.Text)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := defaultConfig()
	if err := validateConfig(valid); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cases := map[string]func(*Config){
		"digits too low":   func(c *Config) { c.Totp.Digits = 4 },
		"digits too high":  func(c *Config) { c.Totp.Digits = 10 },
		"period too short": func(c *Config) { c.Totp.Period = 5 },
		"ttl too short":    func(c *Config) { c.Tokens.LinkTTL = 10 * time.Second },
		"relative url":     func(c *Config) { c.Links.BaseURL = "id.example.com" },
	}
	for name, mutate := range cases {
		cfg := defaultConfig()
		mutate(&cfg)
		if err := validateConfig(cfg); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}

func TestCloneConfigCopiesSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Tokens.Secret = []byte("0123456789abcdef0123456789abcdef")

	cloned := cloneConfig(cfg)
	cloned.Tokens.Secret[0] = 'X'

	if cfg.Tokens.Secret[0] == 'X' {
		t.Fatal("clone shares the secret backing array")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ward.yaml")
	data := `
tokens:
  secret: file-secret
  link_ttl: 2h
totp:
  digits: 8
  period: 60
password:
  memory_kb: 32768
  time: 3
  parallelism: 2
  salt_length: 16
  key_length: 32
mail:
  confirm_email:
    subject: "Please confirm"
    text: "Visit {{link}}"
links:
  base_url: "https://id.example.com"
  confirm_email_path: "/confirm"
audit:
  enabled: true
  buffer_size: 64
  drop_if_full: true
metrics:
  enabled: true
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(cfg.Tokens.Secret) != "file-secret" {
		t.Fatalf("secret = %q", cfg.Tokens.Secret)
	}
	if cfg.Tokens.LinkTTL != 2*time.Hour {
		t.Fatalf("link ttl = %v", cfg.Tokens.LinkTTL)
	}
	if cfg.Totp.Digits != 8 || cfg.Totp.Period != 60 {
		t.Fatalf("totp = %+v", cfg.Totp)
	}
	if cfg.Password.Memory != 32768 || cfg.Password.Time != 3 {
		t.Fatalf("password = %+v", cfg.Password)
	}
	if cfg.Mail.ConfirmEmail.Subject != "Please confirm" {
		t.Fatalf("mail = %+v", cfg.Mail.ConfirmEmail)
	}
	if cfg.Links.BaseURL != "https://id.example.com" || cfg.Links.ConfirmEmailPath != "/confirm" {
		t.Fatalf("links = %+v", cfg.Links)
	}
	if !cfg.Audit.Enabled || cfg.Audit.BufferSize != 64 || !cfg.Audit.DropIfFull {
		t.Fatalf("audit = %+v", cfg.Audit)
	}
	if !cfg.Metrics.Enabled {
		t.Fatal("metrics disabled")
	}
}

func TestLoadConfigFileEnvSecretWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ward.yaml")
	if err := os.WriteFile(path, []byte("tokens:\n  secret: file-secret\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("WARD_TOKEN_SECRET", "env-secret")
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(cfg.Tokens.Secret) != "env-secret" {
		t.Fatalf("secret = %q, want env override", cfg.Tokens.Secret)
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}

	path := filepath.Join(t.TempDir(), "ward.yaml")
	if err := os.WriteFile(path, []byte("tokens:\n  link_ttl: soon\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatal("bad duration accepted")
	}

	if err := os.WriteFile(path, []byte("{not yaml"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatal("malformed yaml accepted")
	}
}
