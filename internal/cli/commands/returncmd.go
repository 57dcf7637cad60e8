package commands

import (
	"context"
	"fmt"

	"BookDesk/internal/cli/auth"
	"BookDesk/internal/cli/bootstrap"
	"BookDesk/internal/config"
)

// returnCmd closes a loan by its record id. It is a keeper affordance: the
// command is hidden outside keeper mode, but the call itself is not gated on
// the derived role; the server is the authority on who may return.
type returnCmd struct{}

func (returnCmd) Name() string        { return "return" }
func (returnCmd) Description() string { return "Mark a loan returned by its record id" }
func (returnCmd) Usage() string       { return "return <record-id>" }
func (returnCmd) KeeperOnly() bool    { return true }

func (returnCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	recordID := args[0]

	log := bootstrap.Logger()
	bridge := bootstrap.NewBridge(cfg, auth.NewCredentialSDK(""), log)
	bridge.RestoreFromStorage()
	catalog := bootstrap.NewCatalog(cfg, bridge, log)

	if err := catalog.Return(ctx, recordID); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Returned loan %s\n", recordID)
	return nil
}

func init() { RegisterCmd(returnCmd{}) }
