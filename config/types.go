package config

import "time"

type AppConfig struct {
	DBDriver   string        `yaml:"db_driver" env:"BOW_DB_DRIVER" env-default:"sqlite"`
	DBURL      string        `yaml:"db_url" env:"BOW_DB_URL"`
	DBPath     string        `yaml:"db_path" env:"BOW_DB_PATH" env-default:"data/bow.db"`
	ListenAddr string        `yaml:"listen_addr" env:"BOW_LISTEN_ADDR" env-default:"0.0.0.0:8080"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"BOW_SESSION_TTL" env-default:"3h"`
	AppEnv     string        `yaml:"app_env" env:"BOW_APP_ENV"`
	CSRFKey    string        `yaml:"csrf_key" env:"BOW_CSRF_KEY"`
	Pepper     string        `yaml:"pepper" env:"BOW_PEPPER"`

	Security  SecurityConfig  `yaml:"security"`
	Risk      RiskConfig      `yaml:"risk"`
	Imports   ImportsConfig   `yaml:"imports"`
	Reminders RemindersConfig `yaml:"reminders"`
}

type SecurityConfig struct {
	TrustedProxies []string `yaml:"trusted_proxies" env:"BOW_SECURITY_TRUSTED_PROXIES" env-separator:","`
}

type RiskConfig struct {
	// AppetiteMargin is how far above a category threshold a score may sit
	// before "approaching" becomes "exceeded".
	AppetiteMargin int `yaml:"appetite_margin" env:"BOW_RISK_APPETITE_MARGIN" env-default:"2"`
}

type ImportsConfig struct {
	TempDir        string        `yaml:"temp_dir" env:"BOW_IMPORTS_TEMP_DIR" env-default:"data/imports/temp"`
	UploadMaxBytes int64         `yaml:"upload_max_bytes" env:"BOW_IMPORTS_UPLOAD_MAX_BYTES" env-default:"20971520"`
	PreviewRows    int           `yaml:"preview_rows" env:"BOW_IMPORTS_PREVIEW_ROWS" env-default:"10"`
	ErrorCap       int           `yaml:"error_cap" env:"BOW_IMPORTS_ERROR_CAP" env-default:"50"`
	ProgressTTL    time.Duration `yaml:"progress_ttl" env:"BOW_IMPORTS_PROGRESS_TTL" env-default:"1h"`
}

type RemindersConfig struct {
	Enabled     bool   `yaml:"enabled" env:"BOW_REMINDERS_ENABLED" env-default:"true"`
	CronSpec    string `yaml:"cron_spec" env:"BOW_REMINDERS_CRON" env-default:"0 7 * * *"`
	DueSoonDays int    `yaml:"due_soon_days" env:"BOW_REMINDERS_DUE_SOON_DAYS" env-default:"7"`
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
