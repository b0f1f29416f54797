package config

import "time"

type AppConfig struct {
	DBDriver   string        `yaml:"db_driver" env:"DISPATCH_DB_DRIVER" env-default:"sqlite"`
	DBURL      string        `yaml:"db_url" env:"DISPATCH_DB_URL"`
	DBPath     string        `yaml:"db_path" env:"DISPATCH_DB_PATH" env-default:"data/dispatch.db"`
	ListenAddr string        `yaml:"listen_addr" env:"DISPATCH_LISTEN_ADDR" env-default:"0.0.0.0:8080"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"DISPATCH_SESSION_TTL" env-default:"3h"`
	AppEnv     string        `yaml:"app_env" env:"DISPATCH_APP_ENV"`

	Security  SecurityConfig  `yaml:"security"`
	Storage   StorageConfig   `yaml:"storage"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Reports   ReportsConfig   `yaml:"reports"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type SecurityConfig struct {
	TrustedProxies  []string `yaml:"trusted_proxies" env:"DISPATCH_SECURITY_TRUSTED_PROXIES" env-separator:","`
	OnlineWindowSec int      `yaml:"online_window_sec" env:"DISPATCH_SECURITY_ONLINE_WINDOW_SEC" env-default:"300"`
}

// StorageConfig selects the attachment backend. When Endpoint is empty the
// service falls back to serving objects from LocalDir with signed link tokens.
type StorageConfig struct {
	Endpoint      string `yaml:"endpoint" env:"DISPATCH_STORAGE_ENDPOINT"`
	AccessKey     string `yaml:"access_key" env:"DISPATCH_STORAGE_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key" env:"DISPATCH_STORAGE_SECRET_KEY"`
	Bucket        string `yaml:"bucket" env:"DISPATCH_STORAGE_BUCKET" env-default:"report-attachments"`
	UseSSL        bool   `yaml:"use_ssl" env:"DISPATCH_STORAGE_USE_SSL" env-default:"true"`
	LocalDir      string `yaml:"local_dir" env:"DISPATCH_STORAGE_LOCAL_DIR" env-default:"data/attachments"`
	LinkSecret    string `yaml:"link_secret" env:"DISPATCH_STORAGE_LINK_SECRET"`
	PublicBaseURL string `yaml:"public_base_url" env:"DISPATCH_STORAGE_PUBLIC_BASE_URL"`
}

// SMTPConfig carries the relay credentials for outbound officer email.
// These are supplied via environment variables only; there is no other
// configuration surface for mail.
type SMTPConfig struct {
	Host     string `yaml:"-" env:"DISPATCH_SMTP_HOST"`
	Port     int    `yaml:"-" env:"DISPATCH_SMTP_PORT" env-default:"587"`
	Username string `yaml:"-" env:"DISPATCH_SMTP_USER"`
	Password string `yaml:"-" env:"DISPATCH_SMTP_PASS"`
	From     string `yaml:"-" env:"DISPATCH_SMTP_FROM"`
}

type ReportsConfig struct {
	SignedURLTTL  time.Duration `yaml:"signed_url_ttl" env:"DISPATCH_REPORTS_SIGNED_URL_TTL" env-default:"1h"`
	DownloadChunk int           `yaml:"download_chunk" env:"DISPATCH_REPORTS_DOWNLOAD_CHUNK" env-default:"32768"`
}

type SchedulerConfig struct {
	Enabled       bool   `yaml:"enabled" env:"DISPATCH_SCHEDULER_ENABLED" env-default:"true"`
	RetentionSpec string `yaml:"retention_spec" env:"DISPATCH_SCHEDULER_RETENTION_SPEC" env-default:"@hourly"`
}

const maxUserSessionTTL = 3 * time.Hour

func (c *AppConfig) EffectiveSessionTTL() time.Duration {
	ttl := maxUserSessionTTL
	if c != nil && c.SessionTTL > 0 {
		ttl = c.SessionTTL
	}
	if ttl > maxUserSessionTTL {
		return maxUserSessionTTL
	}
	return ttl
}
