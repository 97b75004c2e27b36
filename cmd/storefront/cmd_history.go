package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
)

func (c *cli) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Shopping history merged with the history service",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current user's shopping history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			email, err := c.currentUser(ctx)
			if err != nil {
				return err
			}
			history, err := c.sf.history.FetchUserHistory(ctx, email)
			if err != nil {
				return err
			}
			idx, err := c.sf.catalog.Index(ctx)
			if err != nil {
				return err
			}
			writeOrders(cmd.OutOrStdout(), history, idx, c.sf.renderer.Location)
			return nil
		},
	}

	var dir string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export the current user's history as a text file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			email, err := c.currentUser(ctx)
			if err != nil {
				return err
			}
			idx, err := c.sf.catalog.Index(ctx)
			if err != nil {
				return err
			}
			doc, err := c.sf.history.ExportAsText(ctx, email, idx)
			if errors.Is(err, domain.ErrNoHistory) {
				fmt.Fprintln(cmd.OutOrStdout(), "No history to export")
				return nil
			}
			if err != nil {
				return err
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create export dir: %w", err)
			}
			path := filepath.Join(dir, doc.FileName)
			if err := os.WriteFile(path, []byte(doc.Body), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "History exported: %s\n", path)
			return nil
		},
	}
	export.Flags().StringVar(&dir, "dir", ".", "directory to write the export into")

	all := &cobra.Command{
		Use:   "all",
		Short: "Show the whole remote history (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := c.requireAdmin(ctx); err != nil {
				return err
			}
			idx, err := c.sf.catalog.Index(ctx)
			if err != nil {
				return err
			}
			writeOrders(cmd.OutOrStdout(), c.sf.history.FetchAll(ctx), idx, c.sf.renderer.Location)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "delete <order-id>",
		Short: "Delete a record from the history service (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireAdmin(cmd.Context()); err != nil {
				return err
			}
			if err := c.sf.history.DeleteRemote(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "History record deleted: %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(show, export, all, remove)
	return cmd
}
