package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/report"
)

func (c *cli) ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Place and manage orders",
	}
	cmd.AddCommand(
		c.orderPlaceCmd(),
		c.orderCancelCmd(),
		c.orderDeliverCmd(),
		c.orderDeleteCmd(),
		c.orderListCmd(),
		c.orderSalesCmd(),
		c.orderCancellationsCmd(),
		c.orderDashboardCmd(),
	)
	return cmd
}

func (c *cli) orderPlaceCmd() *cobra.Command {
	var info domain.DeliveryInfo
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place an order from the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			email, err := c.currentUser(ctx)
			if err != nil {
				return err
			}
			id, ok, err := c.sf.orders.Place(ctx, info, email)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrCartEmpty
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order placed: %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&info.Name, "name", "", "recipient name")
	cmd.Flags().StringVar(&info.Phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&info.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&info.Notes, "notes", "", "delivery notes")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("phone")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func (c *cli) orderCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel a pending order shortly after placing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			order, found, err := c.sf.orders.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, args[0])
			}
			if order.Status.Terminal() {
				return fmt.Errorf("order %s is already %s", args[0], order.Status)
			}
			ok, err := c.sf.orders.Cancel(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrCancelWindowExpired, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order cancelled: %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) orderDeliverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deliver <order-id>",
		Short: "Mark an order delivered (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireAdmin(cmd.Context()); err != nil {
				return err
			}
			ok, err := c.sf.orders.MarkDelivered(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order delivered: %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) orderDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <order-id>",
		Short: "Delete an order locally (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireAdmin(cmd.Context()); err != nil {
				return err
			}
			if _, err := c.sf.orders.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order deleted: %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) orderListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active orders of the current user (--all for admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var (
				list []domain.Order
				err  error
			)
			if all {
				if err := c.requireAdmin(ctx); err != nil {
					return err
				}
				list, err = c.sf.orders.All(ctx)
			} else {
				email, uerr := c.currentUser(ctx)
				if uerr != nil {
					return uerr
				}
				list, err = c.sf.orders.ByOwner(ctx, email)
			}
			if err != nil {
				return err
			}
			idx, err := c.sf.catalog.Index(ctx)
			if err != nil {
				return err
			}
			writeOrders(cmd.OutOrStdout(), list, idx, c.sf.renderer.Location)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list orders of every user")
	return cmd
}

func (c *cli) orderSalesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sales",
		Short: "Total sales over delivered orders (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireAdmin(cmd.Context()); err != nil {
				return err
			}
			total, err := c.sf.orders.TotalSales(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Total sales: %s\n", rupees(total))
			return nil
		},
	}
}

func (c *cli) orderCancellationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancellations",
		Short: "Show the cancellation log (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireAdmin(cmd.Context()); err != nil {
				return err
			}
			logs, err := c.sf.orders.CancellationLogs(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(logs) == 0 {
				fmt.Fprintln(out, "No cancellations.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tUSER\tCANCELLED AT\tAMOUNT")
			for _, l := range logs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.OrderID, l.UserEmail,
					l.CancelledAt.Time().In(location(c.sf.renderer.Location)).Format(report.DateLayout), rupees(l.TotalAmount))
			}
			return tw.Flush()
		},
	}
}

func (c *cli) orderDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Store statistics (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireAdmin(cmd.Context()); err != nil {
				return err
			}
			d, err := c.sf.orders.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total sales: %s\n", rupees(d.TotalSales))
			fmt.Fprintf(out, "Total orders: %d\n", d.TotalOrders)
			fmt.Fprintf(out, "Pending orders: %d\n", d.PendingOrders)
			fmt.Fprintf(out, "Total products: %d\n", d.TotalProducts)
			return nil
		},
	}
}

func writeOrders(w io.Writer, list []domain.Order, prices domain.PriceLookup, loc *time.Location) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No orders found.")
		return
	}
	for _, o := range list {
		status := o.Status
		if status == "" {
			status = domain.OrderStatusPending
		}
		fmt.Fprintf(w, "%s  %s  %s  %s\n", o.Key(), strings.ToUpper(string(status)), o.UserEmail, rupees(domain.OrderTotal(o, prices)))
		formatMillis(w, "Placed", &o.PlacedAt, location(loc))
		formatMillis(w, "Delivered", o.DeliveredAt, location(loc))
		formatMillis(w, "Cancelled", o.CancelledAt, location(loc))
	}
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
