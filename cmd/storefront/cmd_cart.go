package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
)

func (c *cli) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show cart lines and the running total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			lines, err := c.sf.cart.Lines(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(lines) == 0 {
				fmt.Fprintln(out, "Cart is empty.")
				return nil
			}
			idx, err := c.sf.catalog.Index(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tQTY\tSUBTOTAL")
			var total int64
			for _, l := range lines {
				p, ok := idx.Product(l.ProductID)
				if !ok {
					fmt.Fprintf(tw, "%s\t(removed)\t%d\t-\n", l.ProductID, l.Quantity)
					continue
				}
				sub := p.Price * int64(l.Quantity)
				total += sub
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.ProductID, p.Name, l.Quantity, rupees(sub))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Total: %s\n", rupees(total))
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, found, err := c.sf.catalog.Get(ctx, args[0]); err != nil {
				return err
			} else if !found {
				return fmt.Errorf("%w: %s", domain.ErrProductNotFound, args[0])
			}
			if err := c.sf.cart.Add(ctx, args[0]); err != nil {
				return err
			}
			return c.printCartCount(cmd)
		},
	}

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.sf.cart.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.printCartCount(cmd)
		},
	}

	step := func(use, short string, delta int) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <product-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.sf.cart.UpdateQuantity(cmd.Context(), args[0], delta); err != nil {
					return err
				}
				return c.printCartCount(cmd)
			},
		}
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.sf.cart.Clear(cmd.Context()); err != nil {
				return err
			}
			return c.printCartCount(cmd)
		},
	}

	cmd.AddCommand(show, add, remove,
		step("inc", "Increase quantity by one", 1),
		step("dec", "Decrease quantity by one (removes at zero)", -1),
		clearCmd,
	)
	return cmd
}

func (c *cli) printCartCount(cmd *cobra.Command) error {
	count, err := c.sf.cart.Count(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cart items: %d\n", count)
	return nil
}
