package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/entregas/internal/record"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Customer  string
	Purchase  string
	Paid      string
	Method    string
	Deliverer string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new sale",
		Long: `Record a new sale with the next display number.

The customer is required. The payment method must be one of the configured
choices (default Dinheiro, Pix, Cartão). Amounts accept "12.50" or "12,50".

Examples:
  entregas add --customer Ana --purchase 100 --paid 100 --method Pix --deliverer Joao
  entregas add --customer "Bruno Silva" --purchase 45,50 --method Dinheiro`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Customer, "customer", "", "customer name (required)")
	cmd.Flags().StringVar(&opts.Purchase, "purchase", "0", "purchase amount")
	cmd.Flags().StringVar(&opts.Paid, "paid", "0", "amount paid")
	cmd.Flags().StringVar(&opts.Method, "method", "", "payment method")
	cmd.Flags().StringVar(&opts.Deliverer, "deliverer", "", "deliverer name")

	return cmd
}

func runAdd(opts *AddOptions, cmd *cobra.Command) error {
	purchase, err := record.ParseAmount(opts.Purchase)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --purchase", err)
	}
	paid, err := record.ParseAmount(opts.Paid)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --paid", err)
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.engine.Add(cmd.Context(), record.Draft{
		Customer:       opts.Customer,
		PurchaseAmount: purchase,
		PaidAmount:     paid,
		PaymentMethod:  opts.Method,
		Deliverer:      opts.Deliverer,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "failed to add record", err)
	}

	return s.out.Success(r, fmt.Sprintf("Added #%d (id %d) %s", r.Number, r.ID, r.Customer))
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all records in insertion order",
		Long: `List all records in insertion order.

Examples:
  entregas list
  entregas list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
	return cmd
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.engine.List(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list records", err)
	}

	if s.out.IsJSON() {
		return s.out.Success(records, "")
	}
	if len(records) == 0 {
		return s.out.Success(records, "No records.")
	}
	return writeTable(s.out.Writer, records)
}

// writeTable renders records as aligned text columns.
func writeTable(w io.Writer, records []record.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNO\tCUSTOMER\tPURCHASE\tPAID\tMETHOD\tDELIVERER\tDELIVERED\tAT")
	for _, r := range records {
		delivered := "no"
		if r.Delivered {
			delivered = "yes"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%.2f\t%.2f\t%s\t%s\t%s\t%s\n",
			r.ID, r.Number, r.Customer, r.PurchaseAmount, r.PaidAmount,
			r.PaymentMethod, r.Deliverer, delivered, r.DeliveredAtString())
	}
	return tw.Flush()
}

// EditResult is the payload of the edit and deliver commands.
type EditResult struct {
	Written []record.Field `json:"written"`
	Record  record.Record  `json:"record"`
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id> <field> <value>",
		Short: "Change one field of a record",
		Long: `Change one field of a record, writing only if the value differs.

Fields: customer, purchase_amount, paid_amount, payment_method, deliverer,
delivered, delivered_at. The id and display number cannot be edited.

Setting delivered to true the first time stamps delivered_at with the
current time of day. Setting it back to false keeps the stamp.

Examples:
  entregas edit 3 paid_amount 45,50
  entregas edit 3 delivered sim
  entregas edit 3 customer "Ana Souza"`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			edit, err := record.ParseEdit(args[1], args[2])
			if err != nil {
				return WrapExitError(ExitFailure, "invalid edit", err)
			}
			return runEdit(rootOpts, cmd, id, edit)
		},
	}
	return cmd
}

// NewDeliverCommand creates the deliver command, or undeliver when
// delivered is false.
func NewDeliverCommand(rootOpts *RootOptions, delivered bool) *cobra.Command {
	use, short := "deliver <id>", "Mark a record delivered"
	if !delivered {
		use, short = "undeliver <id>", "Mark a record pending again"
	}

	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runEdit(rootOpts, cmd, id, record.SetDelivered(delivered))
		},
	}
	return cmd
}

func runEdit(opts *RootOptions, cmd *cobra.Command, id int64, edit record.Edit) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	written, err := applyEdit(ctx, s, id, edit)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to edit record", err)
	}

	r, err := s.engine.Get(ctx, id)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read record", err)
	}

	text := fmt.Sprintf("No change to #%d", r.Number)
	if len(written) == 0 {
		s.out.VerboseLog("%s of #%d already matches, nothing written", edit.Field, r.Number)
	} else {
		names := make([]string, len(written))
		for i, f := range written {
			names[i] = string(f)
		}
		text = fmt.Sprintf("Updated #%d: %s", r.Number, strings.Join(names, ", "))
		if r.Delivered {
			text += fmt.Sprintf(" (delivered at %s)", r.DeliveredAtString())
		}
	}
	return s.out.Success(EditResult{Written: written, Record: r}, text)
}

// applyEdit diffs the edit against the stored record and writes it only if
// it changes the value. delivered_at is outside the diffed row and is
// written directly.
func applyEdit(ctx context.Context, s *session, id int64, edit record.Edit) ([]record.Field, error) {
	if err := edit.Validate(); err != nil {
		return nil, err
	}

	if edit.Field == record.FieldDeliveredAt {
		if err := s.engine.ApplyEdit(ctx, id, edit); err != nil {
			return nil, err
		}
		return []record.Field{edit.Field}, nil
	}

	stored, err := s.engine.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.engine.ApplyChanges(ctx, stored, stored.With(edit))
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid record id %q", raw))
	}
	return id, nil
}
