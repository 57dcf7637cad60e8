package commands

import (
	"context"
	"fmt"

	"BookDesk/internal/cli/auth"
	"BookDesk/internal/cli/bootstrap"
	"BookDesk/internal/config"
)

type borrowCmd struct{}

func (borrowCmd) Name() string        { return "borrow" }
func (borrowCmd) Description() string { return "Borrow a book as the signed-in user" }
func (borrowCmd) Usage() string       { return "borrow <book-id>" }
func (borrowCmd) KeeperOnly() bool    { return false }

func (borrowCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	bookID := args[0]

	log := bootstrap.Logger()
	bridge := bootstrap.NewBridge(cfg, auth.NewCredentialSDK(""), log)
	bridge.RestoreFromStorage()
	if err := bridge.Initialize(ctx); err != nil {
		return err
	}
	catalog := bootstrap.NewCatalog(cfg, bridge, log)

	if err := catalog.Borrow(ctx, bookID); err != nil {
		if bridge.Current() == nil {
			return fmt.Errorf("sign in first (bookdesk login <credential>): %w", err)
		}
		return err
	}
	id := bridge.Current()
	fmt.Fprintf(Out, "Borrowed %s as %s\n", bookID, id.Email)
	return nil
}

func init() { RegisterCmd(borrowCmd{}) }
