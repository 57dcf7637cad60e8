package commands

import (
	"context"
	"fmt"
	"time"

	"BookDesk/internal/cli/auth"
	"BookDesk/internal/cli/bootstrap"
	"BookDesk/internal/cli/policy"
	"BookDesk/internal/config"
)

type loansCmd struct{}

func (loansCmd) Name() string        { return "loans" }
func (loansCmd) Description() string { return "List books currently on loan" }
func (loansCmd) Usage() string       { return "loans" }
func (loansCmd) KeeperOnly() bool    { return false }

func (loansCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	log := bootstrap.Logger()
	bridge := bootstrap.NewBridge(cfg, auth.NewCredentialSDK(""), log)
	catalog := bootstrap.NewCatalog(cfg, bridge, log)
	if err := catalog.LoadOnLoan(ctx); err != nil {
		return err
	}
	recs := catalog.OnLoan()
	if len(recs) == 0 {
		fmt.Fprintln(Out, "No books on loan")
		return nil
	}
	now := time.Now()
	for _, r := range recs {
		line := fmt.Sprintf("- %-8s %s / %s", r.Number, r.Name, r.BorrowerName)
		if !r.BorrowedAt.IsZero() {
			line += fmt.Sprintf("  borrowed %s, due %s",
				policy.FormatRelative(r.BorrowedAt, now),
				policy.DueDate(r.BorrowedAt).Format("2006/01/02"))
			if policy.IsOverdue(r.BorrowedAt, now) {
				line += "  OVERDUE"
			}
		}
		fmt.Fprintf(Out, "%s  record=%s\n", line, r.RecordID)
	}
	fmt.Fprintf(Out, "Total: %d\n", len(recs))
	return nil
}

func init() { RegisterCmd(loansCmd{}) }
