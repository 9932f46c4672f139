package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"ledger-engine/internal/app"
	"ledger-engine/internal/core"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "ledger", "led", "l":
		if len(args) < 2 {
			log.Fatal("Usage: app ledger <account-id> [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-q text] [-category name]")
		}
		accountID := args[1]
		q := parseQueryFlags("ledger", args[2:])

		result, err := svc.FetchLedgerView(ctx, accountID, q)
		if err != nil {
			log.Fatalf("Failed to compute ledger: %v", err)
		}
		printLedger(result)

	case "export", "exp", "e":
		if len(args) < 2 {
			log.Fatal("Usage: app export <account-id> [-format csv|xlsx] [-out file] [-from YYYY-MM-DD] [-to YYYY-MM-DD]")
		}
		accountID := args[1]
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		format := fs.String("format", "csv", "export format: csv or xlsx")
		out := fs.String("out", "", "output file (default stdout)")
		q := registerQueryFlags(fs)
		fs.Parse(args[2:])

		w := os.Stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				log.Fatalf("Failed to create output file: %v", err)
			}
			defer f.Close()
			w = f
		}
		if err := svc.ExportLedger(ctx, accountID, *q, *format, w); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		if *out != "" {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", *out)
		}

	default:
		log.Fatalf("Unknown command: %s\nAvailable: ledger, export", args[0])
	}
}

// registerQueryFlags wires the shared filter flags onto fs and returns the
// query they populate after fs.Parse.
func registerQueryFlags(fs *flag.FlagSet) *core.ViewQuery {
	q := &core.ViewQuery{Direction: core.SortAscending}
	fs.Func("from", "start date (YYYY-MM-DD)", func(raw string) error {
		t, err := parseDate(raw)
		q.From = t
		return err
	})
	fs.Func("to", "end date (YYYY-MM-DD)", func(raw string) error {
		t, err := parseDate(raw)
		q.To = t
		return err
	})
	fs.StringVar(&q.Search, "q", "", "search text")
	fs.StringVar(&q.Category, "category", "", "category filter")
	fs.Func("dir", "sort direction: asc or desc", func(raw string) error {
		switch raw {
		case "asc":
			q.Direction = core.SortAscending
		case "desc":
			q.Direction = core.SortDescending
		default:
			return fmt.Errorf("want asc or desc, got %q", raw)
		}
		return nil
	})
	return q
}

func parseQueryFlags(name string, args []string) core.ViewQuery {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	q := registerQueryFlags(fs)
	fs.Parse(args)
	return *q
}

func parseDate(raw string) (*time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%q is not a date", raw)
	}
	return &t, nil
}

func printLedger(result *app.LedgerViewResult) {
	v := result.View
	fmt.Println()
	fmt.Println(strings.Repeat("=", 108))
	fmt.Printf("  %-58s\n", "ACCOUNT BOOK")
	fmt.Printf("  Account : %s\n", result.AccountID)
	fmt.Printf("  Opening : %s\n", v.OpeningBalance.StringFixed(2))
	fmt.Println(strings.Repeat("=", 108))
	fmt.Printf("  %-12s %-34s %-14s %12s %12s %14s\n", "DATE", "DESCRIPTION", "TYPE", "DEBIT", "CREDIT", "BALANCE")
	fmt.Println(strings.Repeat("-", 108))
	for _, t := range v.Rows {
		fmt.Printf("  %-12s %-34s %-14s %12s %12s %14s\n",
			t.DisplayTime.Format("2006-01-02"),
			truncate(t.Description, 34),
			truncate(t.Type, 14),
			t.Debit.StringFixed(2),
			t.Credit.StringFixed(2),
			t.Balance.StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 108))
	fmt.Printf("  %-63s %12s %12s\n", "TOTALS", v.TotalDebit.StringFixed(2), v.TotalCredit.StringFixed(2))
	fmt.Printf("  Current balance: %s\n", v.CurrentBalance.StringFixed(2))
	fmt.Println(strings.Repeat("=", 108))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
