package cmd

import (
	"fmt"
	"log"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/frahmantamala/petshop-commerce/internal"
	"github.com/frahmantamala/petshop-commerce/internal/fee"
	"github.com/frahmantamala/petshop-commerce/internal/financials"
	"github.com/spf13/cobra"
)

var feeCmd = &cobra.Command{
	Use:   "fee",
	Short: "Inspect the payment gateway fee schedule",
}

var feeScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the effective fee schedule and delivery table",
	Run: func(cmd *cobra.Command, args []string) {
		calc := mustCalculator()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME\tPERCENTAGE\tMINIMUM")
		schedule := calc.Schedule()
		for _, code := range fee.KnownCodes {
			e := schedule[code]
			fmt.Fprintf(w, "%s\t%s\t%.2f%%\tRM%.2f\n", code, e.Name, e.Percentage*100, e.Minimum)
		}
		w.Flush()

		delivery := calc.Delivery()
		states := make([]string, 0, len(delivery.States))
		for state := range delivery.States {
			states = append(states, state)
		}
		sort.Strings(states)

		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STATE\tDELIVERY")
		for _, state := range states {
			fmt.Fprintf(w, "%s\tRM%.2f\n", state, delivery.States[state])
		}
		fmt.Fprintf(w, "(other)\tRM%.2f\n", delivery.Default)
		w.Flush()
	},
}

var (
	quoteAmount   float64
	quoteDelivery float64
	quoteMethod   string
)

var feeQuoteCmd = &cobra.Command{
	Use:     "quote",
	Short:   "Print the financial breakdown of a hypothetical order",
	Example: `  petshop-commerce fee quote --amount 84 --delivery 8 --method "Touch n Go"`,
	Run: func(cmd *cobra.Command, args []string) {
		in := financials.OrderInput{
			TotalAmount:   financials.AmountOf(quoteAmount),
			PaymentMethod: quoteMethod,
		}
		if cmd.Flags().Changed("delivery") {
			in.DeliveryFee = financials.AmountOf(quoteDelivery)
		}
		b := financials.NewAggregator(mustCalculator()).Calculate(in)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "product total\tRM%.2f\n", b.ProductTotal)
		fmt.Fprintf(w, "delivery fee\tRM%.2f\n", b.DeliveryFee)
		fmt.Fprintf(w, "order total\tRM%.2f\n", b.OrderTotal)
		fmt.Fprintf(w, "gateway fee\tRM%.2f (%s, from %s)\n", b.SenangPayFee, b.SenangPayFeeType, b.SenangPayFeeCalculatedFrom)
		fmt.Fprintf(w, "net earnings\tRM%.2f\n", b.NetEarnings)
		w.Flush()
	},
}

func mustCalculator() *fee.Calculator {
	// config is optional here; without it the shipped schedule applies
	var fees internal.FeesConfig
	if cfg, err := loadConfig(configPath); err == nil {
		fees = cfg.Fees
	}
	calc, err := fee.NewCalculator(feeConfigFrom(fees))
	if err != nil {
		log.Fatalf("invalid fee config: %v", err)
	}
	return calc
}

// feeConfigFrom overlays the fees config section onto the shipped schedule.
func feeConfigFrom(cfg internal.FeesConfig) fee.Config {
	schedule := make(fee.Schedule, len(cfg.Schedule))
	for code, e := range cfg.Schedule {
		schedule[fee.Code(code)] = fee.Entry{Name: e.Name, Percentage: e.Percentage, Minimum: e.Minimum}
	}
	delivery := fee.DeliveryTable{Default: cfg.Delivery.Default, States: make(map[string]float64, len(cfg.Delivery.States))}
	for _, s := range cfg.Delivery.States {
		delivery.States[s.State] = s.Fee
	}
	return fee.DefaultConfig().Merge(schedule, delivery)
}

func init() {
	feeQuoteCmd.Flags().Float64Var(&quoteAmount, "amount", 0, "product subtotal after discount (RM)")
	feeQuoteCmd.Flags().Float64Var(&quoteDelivery, "delivery", 0, "delivery fee (RM); defaults to the table default")
	feeQuoteCmd.Flags().StringVar(&quoteMethod, "method", "", "payment method as reported by the gateway")

	feeCmd.AddCommand(feeScheduleCmd)
	feeCmd.AddCommand(feeQuoteCmd)

	rootCmd.AddCommand(feeCmd)
}
