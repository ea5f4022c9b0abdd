package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikolayk812/lpg-cart/internal/cart"
	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
	"github.com/nikolayk812/lpg-cart/internal/remote"
)

type runner func(cmd *cobra.Command, args []string, a *app) error

// withApp builds the app for one invocation, optionally pushes queued offline work
// first, and prints the notifications raised while running.
func withApp(autoSync bool, run runner) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		a, err := newApp(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() {
			printNotifications(cmd.ErrOrStderr(), a.recorder.Notifications())
			err = errors.Join(err, a.close(context.WithoutCancel(ctx)))
		}()

		if autoSync {
			a.syncPending(ctx)
		}

		return run(cmd, args, a)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Offline-first LPG delivery cart",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAddCmd(),
		newUpdateCmd(),
		newRemoveCmd(),
		newClearCmd(),
		newListCmd(),
		newSyncCmd(),
		newCheckoutCmd(),
		newCatalogCmd(),
		newOrdersCmd(),
		newWatchCmd(),
	)

	return root
}

func newAddCmd() *cobra.Command {
	var (
		quantity int
		swap     bool
	)

	cmd := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(true, func(cmd *cobra.Command, args []string, a *app) error {
			variant := domain.VariantNew
			if swap {
				variant = domain.VariantSwap
			}

			result, err := a.cart.Add(cmd.Context(), args[0], variant, quantity)
			if err != nil {
				return explain(result, err)
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		}),
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "number of cylinders")
	cmd.Flags().BoolVar(&swap, "swap", false, "swap an empty cylinder instead of buying a new one")

	return cmd
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update LINE_ID QUANTITY",
		Short: "Change the quantity of a cart line; zero removes it",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(true, func(cmd *cobra.Command, args []string, a *app) error {
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity[%s] is not a number", args[1])
			}

			result, err := a.cart.UpdateQuantity(cmd.Context(), args[0], quantity)
			if err != nil {
				return explain(result, err)
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		}),
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove LINE_ID",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(true, func(cmd *cobra.Command, args []string, a *app) error {
			result, err := a.cart.Remove(cmd.Context(), args[0])
			if err != nil {
				return explain(result, err)
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		}),
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every line from the cart",
		Args:  cobra.NoArgs,
		RunE: withApp(true, func(cmd *cobra.Command, _ []string, a *app) error {
			result, err := a.cart.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cart cleared (%s)\n", result.Status)
			return nil
		}),
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: withApp(true, func(cmd *cobra.Command, _ []string, a *app) error {
			printCart(cmd.OutOrStdout(), a.cart.Snapshot(), a.monitor.Online())
			return nil
		}),
	}
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push queued changes and reload the cart from the server",
		Args:  cobra.NoArgs,
		RunE: withApp(false, func(cmd *cobra.Command, _ []string, a *app) error {
			report, err := a.cart.Sync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced: %d pushed, %d removed, %d failed, %d line(s) in cart\n",
				report.Pushed, report.Removed, report.Failed, report.Lines)
			return nil
		}),
	}
}

func newCheckoutCmd() *cobra.Command {
	var (
		address   domain.Address
		frequency string
		day       string
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE: withApp(true, func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()

			addr, err := resolveAddress(ctx, a, address)
			if err != nil {
				return err
			}

			schedule := domain.DeliverySchedule{Frequency: domain.Frequency(strings.ToLower(frequency))}
			if day != "" {
				if schedule.PreferredDay, err = parseWeekday(day); err != nil {
					return err
				}
			}

			order, err := a.cart.Checkout(ctx, domain.CheckoutRequest{Address: addr, Schedule: schedule})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "order %s %s, total %s %s\n",
				order.ID, order.Status, order.Total.Amount.StringFixed(2), order.Total.Currency)
			return nil
		}),
	}

	cmd.Flags().StringVar(&address.Line1, "line1", "", "street address")
	cmd.Flags().StringVar(&address.City, "city", "", "city")
	cmd.Flags().StringVar(&address.PostalCode, "postal-code", "", "postal code")
	cmd.Flags().StringVar(&address.Notes, "notes", "", "delivery notes for the rider")
	cmd.Flags().StringVar(&frequency, "frequency", string(domain.FrequencyOnce), "once, weekly, biweekly or monthly")
	cmd.Flags().StringVar(&day, "day", "", "preferred delivery weekday for recurring orders")

	return cmd
}

// resolveAddress saves a given address to the profile, or falls back to the saved one.
func resolveAddress(ctx context.Context, a *app, given domain.Address) (domain.Address, error) {
	if !given.IsEmpty() {
		if err := a.profiles.SaveAddress(ctx, a.cfg.OwnerID, given); err != nil {
			a.logger.WarnContext(ctx, "failed to save delivery address", "error", err)
		}
		return given, nil
	}

	saved, err := a.profiles.GetAddress(ctx, a.cfg.OwnerID)
	switch {
	case errors.Is(err, port.ErrNotFound):
		return given, nil
	case err != nil:
		return domain.Address{}, fmt.Errorf("profiles.GetAddress: %w", err)
	}
	return saved, nil
}

func newCatalogCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "catalog [PRODUCT_ID]",
		Short: "List products, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(false, func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()

			if refresh {
				if _, err := a.catalog.Refresh(ctx); err != nil {
					return err
				}
			}

			var products []domain.Product
			if len(args) == 1 {
				product, err := a.catalog.Get(ctx, args[0])
				if err != nil {
					return err
				}
				products = []domain.Product{product}
			} else {
				var err error
				if products, err = a.catalog.List(ctx); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tKIND\tPRICE\tAVAILABLE")
			for _, p := range products {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%t\n", p.ID, p.Name, p.Kind, p.Price.Amount.StringFixed(2), p.Price.Currency, p.Available)
			}
			return w.Flush()
		}),
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the catalog from the server first")

	return cmd
}

func newOrdersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List orders placed from this device",
		Args:  cobra.NoArgs,
		RunE: withApp(false, func(cmd *cobra.Command, _ []string, a *app) error {
			orders, err := a.orders.ListOrders(cmd.Context(), a.cfg.OwnerID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tFREQUENCY\tTOTAL\tPLACED")
			for _, o := range orders {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\n", o.ID, o.Status, o.Schedule.Frequency,
					o.Total.Amount.StringFixed(2), o.Total.Currency, o.CreatedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		}),
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Probe the server and sync the cart whenever the connection comes back",
		Args:  cobra.NoArgs,
		RunE: withApp(true, func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()

			unsubscribe := cart.SyncOnReconnect(ctx, a.monitor, a.cart, a.notifier, a.logger)
			defer unsubscribe()

			err := a.monitor.Run(ctx, a.prober.Watch(ctx))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}),
	}
}

// explain marks rollbacks caused by an unreachable server so the user knows a retry may work.
func explain(result domain.Result, err error) error {
	if result.Status == domain.ResultRolledBack && remote.IsRetryable(err) {
		return fmt.Errorf("%w (change undone, the order-service looks unavailable)", err)
	}
	return err
}

func parseWeekday(raw string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), raw) || strings.EqualFold(d.String()[:3], raw) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("day[%s] is not a weekday", raw)
}

func printResult(w io.Writer, result domain.Result) {
	l := result.Line
	fmt.Fprintf(w, "%s %s x%d %s (%s)\n", l.ID, l.ProductID, l.Quantity, l.Variant, result.Status)
}

func printCart(out io.Writer, snapshot domain.CartSnapshot, online bool) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LINE\tPRODUCT\tQTY\tVARIANT\tSTATE\tTOTAL")
	for _, l := range snapshot.Lines {
		total := l.Total()
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s %s\n", l.ID, l.ProductID, l.Quantity, l.Variant, l.State,
			total.Amount.StringFixed(2), total.Currency)
	}
	_ = w.Flush()

	if total, err := snapshot.Total(); err == nil && !total.IsZero() {
		fmt.Fprintf(out, "total: %s %s\n", total.Amount.StringFixed(2), total.Currency)
	}
	if snapshot.HasOutbox() {
		status := "offline"
		if online {
			status = "online"
		}
		fmt.Fprintf(out, "changes waiting to sync (%s)\n", status)
	}
}

func printNotifications(w io.Writer, notes []domain.Notification) {
	for _, n := range notes {
		fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Message)
	}
}
