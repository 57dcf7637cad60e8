package config

import (
	"flag"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// ModeKeeper is the listing mode that reveals administration affordances
// (return, print). It is a capability flag only; the server stays the
// authority on what a caller may actually do.
const ModeKeeper = "keeper"

type Config struct {
	// Gateway settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	ServerURL   string `env:"-"`

	// Endpoint identifiers are deployment configuration: the hosted backend
	// exposes opaque per-deployment paths, so none of them are compiled in.
	AvailableEndpoint   string `env:"ENDPOINT_AVAILABLE"`
	BorrowEndpoint      string `env:"ENDPOINT_BORROW"`
	LoansEndpoint       string `env:"ENDPOINT_LOANS"`
	ReturnEndpoint      string `env:"ENDPOINT_RETURN"`
	ResolveNameEndpoint string `env:"ENDPOINT_RESOLVE_NAME"`

	// Identity settings
	KeeperEmails []string      `env:"KEEPER_EMAILS" envSeparator:","`
	IdentityFile string        `env:"IDENTITY_FILE"`
	SDKTimeout   time.Duration `env:"SDK_TIMEOUT"`

	// Listing settings
	Mode            string `env:"MODE"`
	CollationLocale string `env:"COLLATION_LOCALE"`

	Version bool `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags apply only when the env variables are not set
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "lending backend address (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "prefer https scheme for the backend URL")
	flag.StringVar(&cfg.AvailableEndpoint, "ep-available", cfg.AvailableEndpoint, "endpoint id for the available-books listing")
	flag.StringVar(&cfg.BorrowEndpoint, "ep-borrow", cfg.BorrowEndpoint, "endpoint id for the borrow operation")
	flag.StringVar(&cfg.LoansEndpoint, "ep-loans", cfg.LoansEndpoint, "endpoint id for the on-loan listing")
	flag.StringVar(&cfg.ReturnEndpoint, "ep-return", cfg.ReturnEndpoint, "endpoint id for the return operation")
	flag.StringVar(&cfg.ResolveNameEndpoint, "ep-resolve-name", cfg.ResolveNameEndpoint, "endpoint id for name resolution by email")
	flag.StringVar(&cfg.IdentityFile, "identity-file", cfg.IdentityFile, "path to the identity snapshot file")
	flag.DurationVar(&cfg.SDKTimeout, "sdk-timeout", cfg.SDKTimeout, "how long to wait for the sign-in widget to become ready")
	flag.StringVar(&cfg.Mode, "mode", cfg.Mode, "listing mode; 'keeper' reveals administration affordances")
	flag.StringVar(&cfg.CollationLocale, "collation", cfg.CollationLocale, "locale for borrower-name ordering")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	// validate BaseURL: must be "address:port" (no scheme, no path); otherwise default
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8080"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	if cfg.AvailableEndpoint == "" {
		cfg.AvailableEndpoint = "/books/available"
	}
	if cfg.BorrowEndpoint == "" {
		cfg.BorrowEndpoint = "/books/borrow"
	}
	if cfg.LoansEndpoint == "" {
		cfg.LoansEndpoint = "/books/borrowed"
	}
	if cfg.ReturnEndpoint == "" {
		cfg.ReturnEndpoint = "/books/return"
	}
	if cfg.ResolveNameEndpoint == "" {
		cfg.ResolveNameEndpoint = "/users/find-name"
	}
	if cfg.SDKTimeout <= 0 {
		cfg.SDKTimeout = 10 * time.Second
	}
	if cfg.CollationLocale == "" {
		cfg.CollationLocale = "zh-TW"
	}
	for i, e := range cfg.KeeperEmails {
		cfg.KeeperEmails[i] = strings.TrimSpace(e)
	}

	return cfg
}

// KeeperMode reports whether administration affordances should be visible.
func (c *Config) KeeperMode() bool {
	return c.Mode == ModeKeeper
}
