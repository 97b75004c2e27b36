package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/report"
)

var errAdminRequired = errors.New("admin access required")
var errLoginRequired = errors.New("login required")

// cli — состояние одного запуска: конфигурация и открытая витрина.
type cli struct {
	cfg    clientConfig
	sf     *storefront
	logger *log.Entry
}

// run выполняет одну команду и всегда закрывает витрину, даже если команда вернула ошибку.
func run(ctx context.Context, lookup envLookup, args []string, out io.Writer) error {
	c := newCLI(lookup)
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, c.close())
}

func newCLI(lookup envLookup) *cli {
	c := &cli{logger: log.WithField("component", "storefront")}

	cfg, warnings := readClientConfig(lookup)
	for _, w := range warnings {
		c.logger.Warn(w)
	}
	c.cfg = cfg
	return c
}

// rootCmd собирает дерево команд. Витрина открывается перед командой, кроме офлайн-команд.
func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Campus store client: catalog, cart, orders and shopping history",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["offline"] == "true" {
				return nil
			}
			sf, err := openStorefront(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			c.sf = sf
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.cfg.DBPath, "db", c.cfg.DBPath, "path to the local SQLite store (env "+envDB+")")
	root.PersistentFlags().StringVar(&c.cfg.APIURL, "api-url", c.cfg.APIURL, "shopping history service URL (env "+envAPIURL+")")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.productsCmd(),
		c.cartCmd(),
		c.ordersCmd(),
		c.historyCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) close() error {
	if c.sf == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.APITimeout+time.Second)
	defer cancel()
	err := c.sf.Close(ctx)
	c.sf = nil
	return err
}

// currentUser возвращает пользователя или errLoginRequired.
func (c *cli) currentUser(ctx context.Context) (string, error) {
	email, err := c.sf.session.Current(ctx)
	if err != nil {
		return "", err
	}
	if email == "" {
		return "", errLoginRequired
	}
	return email, nil
}

func (c *cli) requireAdmin(ctx context.Context) error {
	admin, err := c.sf.session.IsAdmin(ctx)
	if err != nil {
		return err
	}
	if !admin {
		return errAdminRequired
	}
	return nil
}

func (c *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Log in with a campus email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.sf.session.Login(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, domain.ErrEmailDomainNotAllowed) {
					return errors.New("invalid email: only @dsce.in emails are allowed")
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Login successful")
			return nil
		},
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.sf.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, err := c.sf.session.Current(cmd.Context())
			if err != nil {
				return err
			}
			if email == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			admin, err := c.sf.session.IsAdmin(cmd.Context())
			if err != nil {
				return err
			}
			if admin {
				email += " (admin)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), email)
			return nil
		},
	}
}

func rupees(amount int64) string {
	return fmt.Sprintf("₹%d", amount)
}

func formatMillis(w io.Writer, label string, m *domain.UnixMillis, loc *time.Location) {
	if m == nil || *m == 0 {
		return
	}
	fmt.Fprintf(w, "  %s: %s\n", label, m.Time().In(loc).Format(report.DateLayout))
}
