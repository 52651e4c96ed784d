package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mcoot/fxdesk/internal/api/request"
)

func newCompareCmd() *cobra.Command {
	var (
		amount, price1, price2, rate1, rate2 string
		days                                 int
	)

	cmd := &cobra.Command{
		Use:   "compare <hkd-aud|aud-hkd>",
		Short: "Compare two exchange offers",
		Long: `Compare two exchange offers for the same amount, including the interest
earned on a short fixed deposit of the converted amount.

Omitted values take the defaults shown on the web page. Prices and rates
must be given for both offers or for neither.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.CompareRequest{Direction: args[0]}

			if amount != "" {
				d, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("invalid --amount %q", amount)
				}
				req.Amount = &d
			}
			if cmd.Flags().Changed("days") {
				req.Days = &days
			}

			quoteFlags := []string{price1, price2, rate1, rate2}
			given := 0
			for _, f := range quoteFlags {
				if f != "" {
					given++
				}
			}
			switch given {
			case 0:
			case len(quoteFlags):
				quotes, err := parseQuotes(price1, rate1, price2, rate2)
				if err != nil {
					return err
				}
				req.Quotes = quotes
			default:
				return fmt.Errorf("--price1, --rate1, --price2 and --rate2 must be given together")
			}

			var result Comparison
			if err := client.Post(cmd.Context(), "/exchange/compare", req, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Amount to convert")
	cmd.Flags().IntVar(&days, "days", 0, "Fixed deposit term in days")
	cmd.Flags().StringVar(&price1, "price1", "", "Price of the first offer")
	cmd.Flags().StringVar(&rate1, "rate1", "", "Deposit rate of the first offer in percent")
	cmd.Flags().StringVar(&price2, "price2", "", "Price of the second offer")
	cmd.Flags().StringVar(&rate2, "rate2", "", "Deposit rate of the second offer in percent")

	return cmd
}

func parseQuotes(values ...string) ([]request.QuoteRequest, error) {
	nums := make([]decimal.Decimal, len(values))
	for i, v := range values {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", v)
		}
		nums[i] = d
	}
	return []request.QuoteRequest{
		{Price: nums[0], RatePercent: nums[1]},
		{Price: nums[2], RatePercent: nums[3]},
	}, nil
}
