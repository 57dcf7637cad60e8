package commands

import (
	"context"
	"fmt"

	"BookDesk/internal/cli/auth"
	"BookDesk/internal/cli/bootstrap"
	"BookDesk/internal/config"
)

type booksCmd struct{}

func (booksCmd) Name() string        { return "books" }
func (booksCmd) Description() string { return "List books available for borrowing" }
func (booksCmd) Usage() string       { return "books" }
func (booksCmd) KeeperOnly() bool    { return false }

func (booksCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	log := bootstrap.Logger()
	bridge := bootstrap.NewBridge(cfg, auth.NewCredentialSDK(""), log)
	catalog := bootstrap.NewCatalog(cfg, bridge, log)
	if err := catalog.LoadAvailable(ctx); err != nil {
		return err
	}
	books := catalog.Available()
	if len(books) == 0 {
		fmt.Fprintln(Out, "No books available")
		return nil
	}
	for _, b := range books {
		line := fmt.Sprintf("- %-8s %s", b.Number, b.Name)
		if b.Author != "" {
			line += fmt.Sprintf("  (%s)", b.Author)
		}
		fmt.Fprintf(Out, "%s  id=%s\n", line, b.ID)
	}
	fmt.Fprintf(Out, "Total: %d\n", len(books))
	return nil
}

func init() { RegisterCmd(booksCmd{}) }
