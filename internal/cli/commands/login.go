package commands

import (
	"context"
	"fmt"

	"BookDesk/internal/cli/auth"
	"BookDesk/internal/cli/bootstrap"
	"BookDesk/internal/config"
)

// loginCmd completes the sign-in handshake with a credential issued by the
// SSO widget out-of-band and persists the resulting identity snapshot.
type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Sign in with an SSO credential and store the identity" }
func (loginCmd) Usage() string       { return "login <credential>" }
func (loginCmd) KeeperOnly() bool    { return false }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}

	log := bootstrap.Logger()
	bridge := bootstrap.NewBridge(cfg, auth.NewCredentialSDK(args[0]), log)
	bridge.RestoreFromStorage()
	if err := bridge.Initialize(ctx); err != nil {
		return err
	}
	id, err := bridge.SignIn(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Signed in as %s <%s>\n", id.Name, id.Email)
	if bridge.IsKeeper() {
		fmt.Fprintln(Out, "Keeper role: yes")
	}
	return nil
}

func init() { RegisterCmd(loginCmd{}) }
