package ward

import (
	"errors"
	"strings"
	"time"
)

// Config defines engine behavior. Builders start from defaultConfig and
// overlay the caller's values; Build validates the merged result once and
// the engine treats it as immutable afterwards.
type Config struct {
	Tokens   TokenConfig
	Totp     TotpConfig
	Password PasswordConfig
	Mail     MailConfig
	Links    LinkConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig drives the default provider registrations.
type TokenConfig struct {
	// Secret keys both default providers (TOTP derivation and link-token
	// signing). Required unless the host registers its own providers.
	Secret []byte
	// LinkTTL bounds email link tokens (confirmation, reset).
	LinkTTL time.Duration
}

// TotpConfig tunes the default one-time-code provider.
type TotpConfig struct {
	Digits int
	Period int
	Skew   int
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig feeds the default argon2id hasher. Values are passed
// through to password.Config.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
MAIL CONFIG
====================================
*/

// MailTemplate is one notification's subject and bodies. Bodies may use the
// placeholders {{code}}, {{link}}, {{email}} and {{token}}; the engine
// substitutes them with URL-safe values before composing.
type MailTemplate struct {
	Subject string
	HTML    string
	Text    string
}

// MailConfig holds the purpose-specific templates. Formatting is
// configuration; only placeholder substitution is engine logic.
type MailConfig struct {
	TwoFactorCode   MailTemplate
	ConfirmEmail    MailTemplate
	ConfirmAltEmail MailTemplate
	ResetPassword   MailTemplate
}

// LinkConfig builds the URLs embedded in email bodies.
type LinkConfig struct {
	// BaseURL is the externally reachable origin, without trailing slash.
	BaseURL             string
	ConfirmEmailPath    string
	ConfirmAltEmailPath string
	ResetPasswordPath   string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events (counted via Engine.AuditDropped) instead of
	// blocking request paths on a slow sink.
	DropIfFull bool
}

// MetricsConfig controls the counter set.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Tokens: TokenConfig{
			LinkTTL: 24 * time.Hour,
		},
		Totp: TotpConfig{
			Digits: 6,
			Period: 30,
			Skew:   1,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Mail: MailConfig{
			TwoFactorCode: MailTemplate{
				Subject: "Your sign-in code",
				Text:    "Your one-time sign-in code is {{code}}.",
			},
			ConfirmEmail: MailTemplate{
				Subject: "Confirm your email address",
				Text:    "Confirm your email address by visiting {{link}}",
			},
			ConfirmAltEmail: MailTemplate{
				Subject: "Confirm your alternate email address",
				Text:    "Confirm your alternate email address by visiting {{link}}",
			},
			ResetPassword: MailTemplate{
				Subject: "Reset your password",
				Text:    "Reset your password by visiting {{link}}",
			},
		},
		Links: LinkConfig{
			BaseURL:             "http://localhost:8080",
			ConfirmEmailPath:    "/account/confirm-email",
			ConfirmAltEmailPath: "/account/confirm-alt-email",
			ResetPasswordPath:   "/account/reset-password",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Tokens.Secret != nil {
		out.Tokens.Secret = make([]byte, len(cfg.Tokens.Secret))
		copy(out.Tokens.Secret, cfg.Tokens.Secret)
	}
	return out
}

func normalizeConfig(cfg *Config) {
	def := defaultConfig()
	if cfg.Tokens.LinkTTL <= 0 {
		cfg.Tokens.LinkTTL = def.Tokens.LinkTTL
	}
	if cfg.Totp.Digits <= 0 {
		cfg.Totp.Digits = def.Totp.Digits
	}
	if cfg.Totp.Period <= 0 {
		cfg.Totp.Period = def.Totp.Period
	}
	if cfg.Totp.Skew <= 0 {
		cfg.Totp.Skew = def.Totp.Skew
	}
	if cfg.Password.Memory == 0 {
		cfg.Password = def.Password
	}
	fillTemplate(&cfg.Mail.TwoFactorCode, def.Mail.TwoFactorCode)
	fillTemplate(&cfg.Mail.ConfirmEmail, def.Mail.ConfirmEmail)
	fillTemplate(&cfg.Mail.ConfirmAltEmail, def.Mail.ConfirmAltEmail)
	fillTemplate(&cfg.Mail.ResetPassword, def.Mail.ResetPassword)
	if cfg.Links.BaseURL == "" {
		cfg.Links = def.Links
	}
	cfg.Links.BaseURL = strings.TrimRight(cfg.Links.BaseURL, "/")
	if cfg.Audit.BufferSize <= 0 {
		cfg.Audit.BufferSize = def.Audit.BufferSize
	}
}

func fillTemplate(dst *MailTemplate, def MailTemplate) {
	if dst.Subject == "" {
		dst.Subject = def.Subject
	}
	if dst.HTML == "" && dst.Text == "" {
		dst.Text = def.Text
	}
}

func validateConfig(cfg Config) error {
	if cfg.Totp.Digits < 6 || cfg.Totp.Digits > 8 {
		return errors.New("totp digits must be 6-8")
	}
	if cfg.Totp.Period < 15 || cfg.Totp.Period > 120 {
		return errors.New("totp period must be 15-120 seconds")
	}
	if cfg.Tokens.LinkTTL < time.Minute {
		return errors.New("link token ttl below one minute")
	}
	if !strings.HasPrefix(cfg.Links.BaseURL, "http://") && !strings.HasPrefix(cfg.Links.BaseURL, "https://") {
		return errors.New("links base url must be absolute")
	}
	return nil
}
