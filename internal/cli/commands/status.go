package commands

import (
	"context"
	"fmt"

	"BookDesk/internal/cli/auth"
	"BookDesk/internal/cli/bootstrap"
	"BookDesk/internal/config"
)

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show the signed-in identity and role" }
func (statusCmd) Usage() string       { return "status" }
func (statusCmd) KeeperOnly() bool    { return false }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	log := bootstrap.Logger()
	bridge := bootstrap.NewBridge(cfg, auth.NewCredentialSDK(""), log)
	bridge.RestoreFromStorage()

	id := bridge.Current()
	if id == nil {
		fmt.Fprintln(Out, "Signed out")
		return nil
	}
	fmt.Fprintf(Out, "Signed in as %s <%s>\n", id.Name, id.Email)
	fmt.Fprintf(Out, "Keeper role: %v\n", bridge.IsKeeper())
	if cfg.KeeperMode() {
		fmt.Fprintln(Out, "Keeper mode: on")
	}
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
