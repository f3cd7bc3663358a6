package ward

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape of an engine config. Durations are YAML
// strings ("24h", "90s"); the token secret may come from the file or from
// the WARD_TOKEN_SECRET environment variable, which wins when set.
type fileConfig struct {
	Tokens struct {
		Secret  string `yaml:"secret"`
		LinkTTL string `yaml:"link_ttl"`
	} `yaml:"tokens"`

	Totp struct {
		Digits int `yaml:"digits"`
		Period int `yaml:"period"`
		Skew   int `yaml:"skew"`
	} `yaml:"totp"`

	Password struct {
		MemoryKB    uint32 `yaml:"memory_kb"`
		Time        uint32 `yaml:"time"`
		Parallelism uint8  `yaml:"parallelism"`
		SaltLength  uint32 `yaml:"salt_length"`
		KeyLength   uint32 `yaml:"key_length"`
	} `yaml:"password"`

	Mail struct {
		TwoFactorCode   fileTemplate `yaml:"two_factor_code"`
		ConfirmEmail    fileTemplate `yaml:"confirm_email"`
		ConfirmAltEmail fileTemplate `yaml:"confirm_alt_email"`
		ResetPassword   fileTemplate `yaml:"reset_password"`
	} `yaml:"mail"`

	Links struct {
		BaseURL             string `yaml:"base_url"`
		ConfirmEmailPath    string `yaml:"confirm_email_path"`
		ConfirmAltEmailPath string `yaml:"confirm_alt_email_path"`
		ResetPasswordPath   string `yaml:"reset_password_path"`
	} `yaml:"links"`

	Audit struct {
		Enabled    bool `yaml:"enabled"`
		BufferSize int  `yaml:"buffer_size"`
		DropIfFull bool `yaml:"drop_if_full"`
	} `yaml:"audit"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

type fileTemplate struct {
	Subject string `yaml:"subject"`
	HTML    string `yaml:"html"`
	Text    string `yaml:"text"`
}

// LoadConfigFile reads a YAML engine config. Missing values fall back to
// defaults at Build time; only present values need to be valid.
func LoadConfigFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Config{
		Totp: TotpConfig{
			Digits: fc.Totp.Digits,
			Period: fc.Totp.Period,
			Skew:   fc.Totp.Skew,
		},
		Password: PasswordConfig{
			Memory:      fc.Password.MemoryKB,
			Time:        fc.Password.Time,
			Parallelism: fc.Password.Parallelism,
			SaltLength:  fc.Password.SaltLength,
			KeyLength:   fc.Password.KeyLength,
		},
		Mail: MailConfig{
			TwoFactorCode:   MailTemplate(fc.Mail.TwoFactorCode),
			ConfirmEmail:    MailTemplate(fc.Mail.ConfirmEmail),
			ConfirmAltEmail: MailTemplate(fc.Mail.ConfirmAltEmail),
			ResetPassword:   MailTemplate(fc.Mail.ResetPassword),
		},
		Links: LinkConfig{
			BaseURL:             fc.Links.BaseURL,
			ConfirmEmailPath:    fc.Links.ConfirmEmailPath,
			ConfirmAltEmailPath: fc.Links.ConfirmAltEmailPath,
			ResetPasswordPath:   fc.Links.ResetPasswordPath,
		},
		Audit: AuditConfig{
			Enabled:    fc.Audit.Enabled,
			BufferSize: fc.Audit.BufferSize,
			DropIfFull: fc.Audit.DropIfFull,
		},
		Metrics: MetricsConfig{Enabled: fc.Metrics.Enabled},
	}

	secret := fc.Tokens.Secret
	if env := os.Getenv("WARD_TOKEN_SECRET"); env != "" {
		secret = env
	}
	if secret != "" {
		cfg.Tokens.Secret = []byte(secret)
	}
	if fc.Tokens.LinkTTL != "" {
		ttl, err := time.ParseDuration(fc.Tokens.LinkTTL)
		if err != nil {
			return Config{}, fmt.Errorf("parse link_ttl: %w", err)
		}
		cfg.Tokens.LinkTTL = ttl
	}
	return cfg, nil
}
