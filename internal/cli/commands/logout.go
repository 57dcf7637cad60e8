package commands

import (
	"context"
	"fmt"

	"BookDesk/internal/cli/auth"
	"BookDesk/internal/cli/bootstrap"
	"BookDesk/internal/config"
)

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Sign out and clear the stored identity" }
func (logoutCmd) Usage() string       { return "logout" }
func (logoutCmd) KeeperOnly() bool    { return false }

func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	log := bootstrap.Logger()
	bridge := bootstrap.NewBridge(cfg, auth.NewCredentialSDK(""), log)
	bridge.RestoreFromStorage()
	bridge.SignOut()
	fmt.Fprintln(Out, "Signed out")
	return nil
}

func init() { RegisterCmd(logoutCmd{}) }
