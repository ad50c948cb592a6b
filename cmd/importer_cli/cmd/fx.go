package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/SscSPs/statement_importer/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// dateFlag parses the --date flag, defaulting to today.
func dateFlag(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("date")
	if raw == "" {
		return domain.RateDay(time.Now()), nil
	}
	date, err := time.Parse(dto.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", raw)
	}
	return date, nil
}

func (c *cli) fxCmd() *cobra.Command {
	fxCmd := &cobra.Command{
		Use:   "fx",
		Short: "Look up, pin and refresh exchange rates",
	}

	rateCmd := &cobra.Command{
		Use:     "rate <from> <to>",
		Short:   "Resolve the rate for a currency pair",
		Example: "importer fx rate USD EUR --date=2025-01-17",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateFlag(cmd)
			if err != nil {
				return err
			}
			from, to := strings.ToUpper(args[0]), strings.ToUpper(args[1])
			rate, err := c.services.FxRate.GetRate(cmd.Context(), from, to, date)
			if err != nil {
				return err
			}
			if rate == nil {
				return fmt.Errorf("no rate available for %s/%s on %s", from, to, date.Format(dto.DateLayout))
			}
			return c.printJSON(dto.ToFxRateResponse(rate))
		},
	}
	rateCmd.Flags().String("date", "", "rate date (YYYY-MM-DD), defaults to today")

	overrideCmd := &cobra.Command{
		Use:     "override <from> <to> <rate>",
		Short:   "Pin a rate for one day so fetched rates never replace it",
		Example: "importer fx override USD EUR 0.95 --date=2025-01-17 --source=manual",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateFlag(cmd)
			if err != nil {
				return err
			}
			rate, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", args[2], err)
			}
			source, _ := cmd.Flags().GetString("source")
			stored, err := c.services.FxRate.OverrideRate(cmd.Context(),
				strings.ToUpper(args[0]), strings.ToUpper(args[1]), rate, date, domain.FxSource(source))
			if err != nil {
				return err
			}
			return c.printJSON(dto.FxRateResponse{
				From:   stored.CurrencyFrom,
				To:     stored.CurrencyTo,
				Date:   stored.RateDate.Format(dto.DateLayout),
				Rate:   stored.Rate,
				Source: stored.Source,
			})
		},
	}
	overrideCmd.Flags().String("date", "", "rate date (YYYY-MM-DD), defaults to today")
	overrideCmd.Flags().String("source", string(domain.FxSourceOverride), "manual or override")

	clearCmd := &cobra.Command{
		Use:   "clear <from> <to>",
		Short: "Remove a pinned rate so fetched rates apply again",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateFlag(cmd)
			if err != nil {
				return err
			}
			from, to := strings.ToUpper(args[0]), strings.ToUpper(args[1])
			if err := c.services.FxRate.ClearOverride(cmd.Context(), from, to, date); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "cleared %s/%s on %s\n", from, to, date.Format(dto.DateLayout))
			return nil
		},
	}
	clearCmd.Flags().String("date", "", "rate date (YYYY-MM-DD), defaults to today")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the reference rate feed and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := c.services.FxRate.SyncLatest(cmd.Context())
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			fmt.Fprintf(c.out, "stored %d rates\n", written)
			return nil
		},
	}

	fxCmd.AddCommand(rateCmd, overrideCmd, clearCmd, syncCmd)
	return fxCmd
}
