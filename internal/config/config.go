package config // package config loads application configuration from a TOML file and environment variables

import (
    "fmt"
    "log"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/BurntSushi/toml"
    "github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Every field can be set in
// the optional TOML file and overridden by the environment variable named in
// the comment next to it.
type Config struct {
    Env           string        `toml:"env"`            // APP_ENV: dev, test or prod
    Port          string        `toml:"port"`           // APP_PORT: HTTP port to listen on
    DBDriver      string        `toml:"db_driver"`      // DB_DRIVER: mysql or sqlite3
    DBUser        string        `toml:"db_user"`        // DB_USER
    DBPass        string        `toml:"db_pass"`        // DB_PASS (empty allowed)
    DBHost        string        `toml:"db_host"`        // DB_HOST
    DBPort        string        `toml:"db_port"`        // DB_PORT
    DBName        string        `toml:"db_name"`        // DB_NAME
    DBPath        string        `toml:"db_path"`        // DB_PATH: sqlite file, used when DB_DRIVER=sqlite3
    SessionSecret string        `toml:"session_secret"` // SESSION_SECRET: HMAC key for session cookies
    SessionTTL    time.Duration `toml:"session_ttl"`    // SESSION_TTL
    SessionCookie string        `toml:"session_cookie"` // SESSION_COOKIE: cookie name
    SessionStore  string        `toml:"session_store"`  // SESSION_STORE: sql or redis
    BcryptCost    int           `toml:"bcrypt_cost"`    // BCRYPT_COST
    Timezone      string        `toml:"timezone"`       // APP_TIMEZONE: zone used to decide what "today" is
    PublicDir     string        `toml:"public_dir"`     // PUBLIC_DIR: static assets served under /public
    RabbitURL     string        `toml:"rabbitmq_url"`   // RABBITMQ_URL (or AMQP_URL); empty disables publishing
    Redis         RedisConfig   `toml:"redis"`
}

// RedisConfig mirrors the REDIS_* variables read by NewRedisClient.
type RedisConfig struct {
    Addr     string `toml:"addr"`     // REDIS_ADDR, or REDIS_HOST + REDIS_PORT
    Password string `toml:"password"` // REDIS_PASSWORD
    DB       int    `toml:"db"`       // REDIS_DB
    TLS      bool   `toml:"tls"`      // REDIS_TLS
}

// Defaults returns the configuration used when neither the file nor the
// environment say otherwise.  It is suitable for local development.
func Defaults() Config {
    return Config{
        Env:           "dev",
        Port:          "8080",
        DBDriver:      "mysql",
        DBUser:        "planner",
        DBHost:        "127.0.0.1",
        DBPort:        "3306",
        DBName:        "planner",
        DBPath:        "./data/planner.db",
        SessionSecret: "dev-session-secret",
        SessionTTL:    7 * 24 * time.Hour,
        SessionCookie: "planner_session",
        SessionStore:  "sql",
        BcryptCost:    10,
        Timezone:      "Europe/Warsaw",
        PublicDir:     "public",
        Redis:         RedisConfig{Addr: "localhost:6379"},
    }
}

// LoadDotEnv loads variables from a .env file in the working directory when
// one exists.  Variables already present in the environment win.
func LoadDotEnv() {
    if _, err := os.Stat(".env"); err != nil {
        return
    }
    if err := godotenv.Load(); err != nil {
        log.Printf("config: could not load .env: %v", err)
    }
}

// Load builds a Config from the defaults, the TOML file at path (skipped
// when path is empty) and finally the environment.
func Load(path string) (Config, error) {
    cfg := Defaults()
    if path != "" {
        if err := LoadFile(path, &cfg); err != nil {
            return Config{}, err
        }
    }
    applyEnv(&cfg)
    if err := cfg.validate(); err != nil {
        return Config{}, err
    }
    return cfg, nil
}

// LoadFile decodes a TOML file over cfg.  Keys missing from the file keep
// the values already in cfg.
func LoadFile(path string, cfg *Config) error {
    md, err := toml.DecodeFile(path, cfg)
    if err != nil {
        return fmt.Errorf("config: decode %s: %w", path, err)
    }
    if undecoded := md.Undecoded(); len(undecoded) > 0 {
        log.Printf("config: ignoring unknown keys in %s: %v", path, undecoded)
    }
    return nil
}

func applyEnv(cfg *Config) {
    cfg.Env = envStr("APP_ENV", cfg.Env)
    cfg.Port = envStr("APP_PORT", cfg.Port)
    cfg.DBDriver = strings.ToLower(envStr("DB_DRIVER", cfg.DBDriver))
    cfg.DBUser = envStr("DB_USER", cfg.DBUser)
    cfg.DBPass = envStr("DB_PASS", cfg.DBPass)
    cfg.DBHost = envStr("DB_HOST", cfg.DBHost)
    cfg.DBPort = envStr("DB_PORT", cfg.DBPort)
    cfg.DBName = envStr("DB_NAME", cfg.DBName)
    cfg.DBPath = envStr("DB_PATH", cfg.DBPath)
    cfg.SessionSecret = envStr("SESSION_SECRET", cfg.SessionSecret)
    cfg.SessionTTL = envDur("SESSION_TTL", cfg.SessionTTL)
    cfg.SessionCookie = envStr("SESSION_COOKIE", cfg.SessionCookie)
    cfg.SessionStore = strings.ToLower(envStr("SESSION_STORE", cfg.SessionStore))
    cfg.BcryptCost = envInt("BCRYPT_COST", cfg.BcryptCost)
    cfg.Timezone = envStr("APP_TIMEZONE", cfg.Timezone)
    cfg.PublicDir = envStr("PUBLIC_DIR", cfg.PublicDir)
    cfg.RabbitURL = envStr("RABBITMQ_URL", envStr("AMQP_URL", cfg.RabbitURL))

    host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
    cfg.Redis.Addr = envStr("REDIS_ADDR", cfg.Redis.Addr)
    if host != "" && port != "" {
        cfg.Redis.Addr = host + ":" + port
    }
    cfg.Redis.Password = envStr("REDIS_PASSWORD", cfg.Redis.Password)
    cfg.Redis.DB = envInt("REDIS_DB", cfg.Redis.DB)
    cfg.Redis.TLS = envBool("REDIS_TLS", cfg.Redis.TLS)
}

func (c Config) validate() error {
    switch c.DBDriver {
    case "mysql", "sqlite3":
    default:
        return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
    }
    switch c.SessionStore {
    case "sql", "redis":
    default:
        return fmt.Errorf("config: unsupported SESSION_STORE %q", c.SessionStore)
    }
    if c.Env == "prod" && (c.SessionSecret == "" || c.SessionSecret == Defaults().SessionSecret) {
        return fmt.Errorf("config: SESSION_SECRET must be set in prod")
    }
    if c.SessionTTL <= 0 {
        return fmt.Errorf("config: SESSION_TTL must be positive")
    }
    if _, err := time.LoadLocation(c.Timezone); err != nil {
        return fmt.Errorf("config: invalid APP_TIMEZONE %q: %w", c.Timezone, err)
    }
    return nil
}

// Location returns the configured time zone.  validate has already checked
// that it loads, so failures fall back to UTC.
func (c Config) Location() *time.Location {
    loc, err := time.LoadLocation(c.Timezone)
    if err != nil {
        return time.UTC
    }
    return loc
}

func envStr(k, d string) string {
    if v := strings.TrimSpace(os.Getenv(k)); v != "" {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    return d
}
