// Package bootstrap wires the client's pieces together from configuration,
// so commands stay free of construction noise.
package bootstrap

import (
	"os"

	"go.uber.org/zap"

	"BookDesk/internal/cli/api"
	"BookDesk/internal/cli/auth"
	"BookDesk/internal/cli/policy"
	fsrepo "BookDesk/internal/cli/repo/fs"
	"BookDesk/internal/cli/service"
	"BookDesk/internal/config"
)

// Logger builds the client logger: silent by default, development output
// when DEBUG is set.
func Logger() *zap.Logger {
	if os.Getenv("DEBUG") != "" {
		if l, err := zap.NewDevelopment(); err == nil {
			return l
		}
	}
	return zap.NewNop()
}

// NewBridge wires the identity bridge from config around the given widget.
func NewBridge(cfg *config.Config, sdk auth.SDK, log *zap.Logger) *auth.Bridge {
	store := fsrepo.IdentityStore{Path: cfg.IdentityFile}
	return auth.NewBridge(sdk, store, cfg.KeeperEmails, cfg.SDKTimeout, log)
}

// NewCatalog wires the catalog state machine from config.
func NewCatalog(cfg *config.Config, bridge *auth.Bridge, log *zap.Logger) service.Catalog {
	gw := api.NewFromConfig(cfg, log)
	sorter := policy.NewLoanSorter(cfg.CollationLocale)
	return service.NewCatalogLocal(gw, bridge, sorter, log)
}
