package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
)

func (c *cli) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse and manage the catalog",
	}

	var category string
	list := &cobra.Command{
		Use:   "list",
		Short: "List products, optionally of one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				products []domain.Product
				err      error
			)
			if category != "" {
				products, err = c.sf.catalog.ByCategory(cmd.Context(), category)
			} else {
				products, err = c.sf.catalog.All(cmd.Context())
			}
			if err != nil {
				return err
			}
			writeProducts(cmd.OutOrStdout(), products)
			return nil
		},
	}
	list.Flags().StringVar(&category, "category", "", "category id")

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search products by name or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := c.sf.catalog.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writeProducts(cmd.OutOrStdout(), products)
			return nil
		},
	}

	categories := &cobra.Command{
		Use:   "categories",
		Short: "List categories with product counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats, err := c.sf.catalog.Categories(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPRODUCTS")
			for _, cat := range cats {
				fmt.Fprintf(tw, "%s\t%s %s\t%d\n", cat.ID, cat.Icon, cat.Name, cat.Count)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(list, search, categories, c.productAddCmd(), c.productUpdateCmd(), c.productDeleteCmd())
	return cmd
}

func (c *cli) productAddCmd() *cobra.Command {
	var p domain.Product
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireAdmin(cmd.Context()); err != nil {
				return err
			}
			id, err := c.sf.catalog.Add(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product added: %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "product name")
	cmd.Flags().Int64Var(&p.Price, "price", 0, "price in rupees")
	cmd.Flags().StringVar(&p.Image, "image", "", "image URL")
	cmd.Flags().StringVar(&p.Category, "category", "others", "category id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func (c *cli) productUpdateCmd() *cobra.Command {
	var (
		name, image, category string
		price                 int64
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update product fields (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireAdmin(cmd.Context()); err != nil {
				return err
			}
			var patch domain.ProductPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("price") {
				patch.Price = &price
			}
			if flags.Changed("image") {
				patch.Image = &image
			}
			if flags.Changed("category") {
				patch.Category = &category
			}

			ok, err := c.sf.catalog.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrProductNotFound, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product updated: %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().Int64Var(&price, "price", 0, "price in rupees")
	cmd.Flags().StringVar(&image, "image", "", "image URL")
	cmd.Flags().StringVar(&category, "category", "", "category id")
	return cmd
}

func (c *cli) productDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireAdmin(cmd.Context()); err != nil {
				return err
			}
			if err := c.sf.catalog.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product deleted: %s\n", args[0])
			return nil
		},
	}
}

func writeProducts(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tCATEGORY")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, rupees(p.Price), p.Category)
	}
	_ = tw.Flush()
}
