package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dompet/internal/core"
	"dompet/internal/export"
	"dompet/internal/format"
	apphttp "dompet/internal/http"
	"dompet/internal/ledger"
	"dompet/internal/services"
)

// openFunc opens the ledger a command runs against.
type openFunc func(ctx context.Context) (*services.Ledger, error)

type app struct {
	open   openFunc
	ledger *services.Ledger
	user   string
	asJSON bool
}

// execute runs the command line in args and closes the ledger it opened,
// whether or not the command succeeded.
func execute(ctx context.Context, open openFunc, args []string, out io.Writer) error {
	var opened *services.Ledger
	root := newRootCmd(func(ctx context.Context) (*services.Ledger, error) {
		l, err := open(ctx)
		opened = l
		return l, err
	})
	root.SetOut(out)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if opened != nil {
		if cerr := opened.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close ledger: %w", cerr))
		}
	}
	return err
}

func newRootCmd(open openFunc) *cobra.Command {
	a := &app{open: open}

	root := &cobra.Command{
		Use:           "dompetctl",
		Short:         "Inspect and update a dompet ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(a.user) == "" {
				return fmt.Errorf("--user (or DOMPET_USER) is required: %w", core.ErrUnauthenticated)
			}
			l, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			a.ledger = l
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.user, "user", "u", os.Getenv("DOMPET_USER"), "User whose ledger to use")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print JSON instead of a table")

	root.AddCommand(
		a.summaryCmd(),
		a.transactionsCmd(),
		a.walletsCmd(),
		a.budgetsCmd(),
		a.goalsCmd(),
		a.exportCmd(),
		a.importCmd(),
	)
	return root
}

func (a *app) snapshot(ctx context.Context) (services.Snapshot, error) {
	return services.NewSnapshotLoader(a.ledger.Store()).Load(ctx, a.user)
}

// render writes v as JSON when --json is set and calls table otherwise.
func (a *app) render(w io.Writer, v any, table func(tw *tabwriter.Writer)) error {
	if a.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func (a *app) summaryCmd() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total income, expense and balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := optionalDate(start)
			if err != nil {
				return err
			}
			to, err := optionalDate(end)
			if err != nil {
				return err
			}
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			s := ledger.SummarizeRange(snap.Transactions, from, to)
			return a.render(cmd.OutOrStdout(), s, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Pemasukan\t%s\n", format.Currency(s.TotalIncome))
				fmt.Fprintf(tw, "Pengeluaran\t%s\n", format.Currency(s.TotalExpense))
				fmt.Fprintf(tw, "Saldo\t%s\n", format.Currency(s.TotalBalance))
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "Last day, YYYY-MM-DD")
	return cmd
}

func (a *app) transactionsCmd() *cobra.Command {
	var filters []string
	var limit int
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List transactions",
		Long: `List transactions with the same filters as the API, given as key=value:

  dompetctl transactions -f type=expense -f q=kopi
  dompetctl transactions -f advanced=true -f sort=highest -f min=50000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			for _, f := range filters {
				k, v, ok := strings.Cut(f, "=")
				if !ok {
					return fmt.Errorf("filter %q: want key=value", f)
				}
				q.Add(strings.TrimSpace(k), v)
			}
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			view := ledger.ComposeView(snap.Transactions, apphttp.ParseCriteria(q), limit)
			rows := view.Flat
			for _, g := range view.Groups {
				rows = append(rows, g.Transactions...)
			}
			return a.render(cmd.OutOrStdout(), rows, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "TANGGAL\tTIPE\tKATEGORI\tDOMPET\tJUMLAH\tCATATAN")
				for _, t := range rows {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						format.ShortDate(t.Date), format.TypeLabel(t.Type), t.CategoryID, t.WalletID,
						format.Currency(t.Amount), t.Note)
				}
				if view.HasMore {
					fmt.Fprintf(tw, "\n%d of %d shown, use --limit 0 for all\n", view.Visible, view.Total)
				}
			})
		},
	}
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter as key=value, repeatable")
	cmd.Flags().IntVar(&limit, "limit", ledger.DefaultPageSize, "Rows to show, 0 for all")
	return cmd
}

func (a *app) walletsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallets",
		Short: "List wallets with their balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			balances := ledger.WalletBalances(snap.Transactions, snap.Wallets)
			out := make([]services.WalletBalance, 0, len(snap.Wallets))
			for _, w := range snap.Wallets {
				out = append(out, services.WalletBalance{Wallet: w, Balance: balances[w.ID]})
			}
			return a.render(cmd.OutOrStdout(), out, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAMA\tSALDO")
				for _, w := range out {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", w.ID, w.Name, format.Currency(w.Balance))
				}
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "adjust <wallet-id> <target>",
		Short: "Set a wallet's balance by recording a reconciliation transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := core.ParseSignedAmount(args[1])
			if err != nil {
				return err
			}
			tx, adjusted, err := a.ledger.AdjustWalletBalance(cmd.Context(), a.user, args[0], target)
			if err != nil {
				return err
			}
			if !adjusted {
				fmt.Fprintln(cmd.OutOrStdout(), "Balance already matches, nothing recorded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s on %s\n",
				strings.ToLower(format.TypeLabel(tx.Type)), format.Currency(tx.Amount), args[0])
			return nil
		},
	})
	return cmd
}

func (a *app) budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Show budget consumption for the current cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			statuses := ledger.BudgetStatuses(snap.Budgets, snap.Transactions, a.ledger.Today())
			totals := ledger.Totals(statuses)
			return a.render(cmd.OutOrStdout(), map[string]any{"budgets": statuses, "totals": totals}, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "KATEGORI\tBATAS\tTERPAKAI\tSISA\t%")
				for _, s := range statuses {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f\n", s.CategoryName,
						format.Currency(s.Limit), format.Currency(s.Spent), format.Currency(s.Remaining), s.Percentage)
				}
				fmt.Fprintf(tw, "TOTAL\t%s\t%s\t%s\t%.0f\n",
					format.Currency(totals.Limit), format.Currency(totals.Spent), format.Currency(totals.Remaining), totals.Percentage)
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restart every budget cycle from today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := a.ledger.ResetBudgetCycles(cmd.Context(), a.user)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Budget cycles now start %s\n", format.Date(start))
			return nil
		},
	})
	return cmd
}

func (a *app) goalsCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "List savings goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := core.GoalStatus(strings.ToLower(status))
			switch st {
			case "", core.GoalActive, core.GoalCompleted:
			default:
				return fmt.Errorf("%w %q", core.ErrInvalidStatus, status)
			}
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			goals := ledger.FilterGoals(snap.Goals, st)
			return a.render(cmd.OutOrStdout(), goals, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAMA\tTERKUMPUL\tTARGET\t%\tSTATUS")
				for _, g := range goals {
					p := ledger.Progress(g)
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f\t%s\n", g.ID, g.Name,
						format.Currency(g.Current), format.Currency(g.Target), p.Percentage, g.Status)
				}
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "active or completed")

	cmd.AddCommand(&cobra.Command{
		Use:   "save <goal-id> <amount>",
		Short: "Add savings to a goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[1])
			if err != nil {
				return err
			}
			g, err := a.ledger.AddSavings(cmd.Context(), a.user, args[0], amount)
			if err != nil {
				return err
			}
			p := ledger.Progress(g)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s of %s (%.0f%%)\n",
				g.Name, format.Currency(g.Current), format.Currency(g.Target), p.Percentage)
			return nil
		},
	})
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions",
	}
	var output string
	csvCmd := &cobra.Command{
		Use:   "csv",
		Short: "Write every transaction as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			ts := snap.Transactions
			ledger.Sort(ts, ledger.SortNewest)

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return export.WriteCSV(w, ts)
		},
	}
	csvCmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")
	cmd.AddCommand(csvCmd)
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv|file.yaml>",
		Short: "Import transactions from CSV or YAML",
		Long: `Import transactions. CSV files use the export layout. YAML files hold a
list of records with type, amount, date, category, wallet and note.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			raws, err := a.readRecords(ctx, args[0])
			if err != nil {
				return err
			}
			res, err := a.ledger.ImportTransactions(ctx, a.user, raws)
			out := cmd.OutOrStdout()
			for _, rejected := range res.Rejected {
				fmt.Fprintln(out, "skipped:", rejected)
			}
			fmt.Fprintf(out, "Imported %d of %d records\n", len(res.Imported), len(raws))
			return err
		},
	}
}

func (a *app) readRecords(ctx context.Context, path string) ([]core.RawTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		wallets, err := a.ledger.Store().ListWallets(ctx, a.user)
		if err != nil {
			return nil, err
		}
		return export.ReadCSV(f, wallets)
	case ".yaml", ".yml":
		var raws []core.RawTransaction
		if err := yaml.NewDecoder(f).Decode(&raws); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return raws, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q: use .csv, .yaml or .yml", filepath.Ext(path))
	}
}

func optionalDate(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}
