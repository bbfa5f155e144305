package cli

import (
	"fmt"
	"os"

	"github.com/diewo77/go-rentals/internal/db"
	"github.com/diewo77/go-rentals/internal/export"
	"github.com/diewo77/go-rentals/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func MigrateCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			useSQL, _ := cmd.Flags().GetBool("sql")
			if useSQL {
				if err := db.RunSQLMigrations(env.Config.Database.URL()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "SQL migrations applied.")
				return nil
			}
			conn, err := env.DB()
			if err != nil {
				return err
			}
			if err := db.Migrate(conn); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema migrated.")
			return nil
		},
	}
	cmd.Flags().Bool("sql", false, "apply the embedded SQL migrations instead of AutoMigrate")
	return cmd
}

func SeedCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := env.DB()
			if err != nil {
				return err
			}
			admin, err := db.SeedAdmin(conn, env.Config.Auth.AdminEmail, env.Config.Auth.AdminPassword)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin user ready: %s\n", admin.Email)
			return nil
		},
	}
}

func TaxCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Tax calculations",
	}
	cmd.AddCommand(taxCalcCmd(env))
	return cmd
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q", name, raw)
	}
	return d, nil
}

func taxCalcCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute IVA, IT and RC-IVA for one month of rent",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := tax.Input{}
			var err error
			if in.Rent, err = decimalFlag(cmd, "rent"); err != nil {
				return err
			}
			if in.InvoicesIVA, err = decimalFlag(cmd, "invoices-iva"); err != nil {
				return err
			}
			if in.InvoicesRCIVA, err = decimalFlag(cmd, "invoices-rc-iva"); err != nil {
				return err
			}
			if cmd.Flags().Changed("accrued") {
				accrued, err := decimalFlag(cmd, "accrued")
				if err != nil {
					return err
				}
				in.AccruedQuarter = &accrued
			}
			in.Month, _ = cmd.Flags().GetInt("month")
			in.Year, _ = cmd.Flags().GetInt("year")

			engine := tax.NewEngine(env.Config.Finance.TaxRates())
			var res tax.Result
			if determined, _ := cmd.Flags().GetBool("determined"); determined {
				res, err = engine.ComputeDetermined(in.Rent, in.Month, in.Year)
			} else {
				res, err = engine.Compute(in)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f := cmd.Flags()
	f.String("rent", "", "monthly rent (Bs.)")
	f.Int("month", 0, "month 1-12")
	f.Int("year", 0, "year")
	f.String("invoices-iva", "", "IVA compensation invoices presented")
	f.String("invoices-rc-iva", "", "RC-IVA compensation invoices presented")
	f.String("accrued", "", "accrued quarter amount, overrides rent x 3")
	f.Bool("determined", false, "ignore invoices and show the determined taxes")
	_ = cmd.MarkFlagRequired("rent")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func MoraCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mora",
		Short: "Late-fee maintenance",
	}
	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Recompute late fees of open payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("as-of")
			when, err := asOfFlag(raw)
			if err != nil {
				return err
			}
			svc, err := env.Services()
			if err != nil {
				return err
			}
			contractID, _ := cmd.Flags().GetUint("contract")
			var n int
			if contractID > 0 {
				n, err = svc.Mora.RefreshContract(cmd.Context(), contractID, when)
			} else {
				n, err = svc.Mora.RefreshActiveContracts(cmd.Context(), when)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d payments.\n", n)
			return nil
		},
	}
	refresh.Flags().Uint("contract", 0, "only this contract")
	refresh.Flags().String("as-of", "", "reference date YYYY-MM-DD (default today)")
	cmd.AddCommand(refresh)
	return cmd
}

func NotifyCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Tenant notices",
	}
	overdue := &cobra.Command{
		Use:   "overdue",
		Short: "Email tenants with overdue payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("as-of")
			when, err := asOfFlag(raw)
			if err != nil {
				return err
			}
			svc, err := env.Services()
			if err != nil {
				return err
			}
			asOf := svc.Clock()
			if when != nil {
				asOf = *when
			}
			rep, err := svc.Notifications.NotifyOverdue(cmd.Context(), asOf)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}
	overdue.Flags().String("as-of", "", "reference date YYYY-MM-DD (default today)")
	cmd.AddCommand(overdue)
	return cmd
}

func ExportCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reports as Excel workbooks",
	}
	taxes := &cobra.Command{
		Use:   "taxes",
		Short: "Write the annual tax summary of a contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			contractID, _ := cmd.Flags().GetUint("contract")
			year, _ := cmd.Flags().GetInt("year")
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = fmt.Sprintf("impuestos-%d-%d.xlsx", contractID, year)
			}
			svc, err := env.Services()
			if err != nil {
				return err
			}
			sum, err := svc.Taxes.AnnualSummary(cmd.Context(), contractID, year)
			if err != nil {
				return err
			}
			body, err := export.AnnualTaxes(sum)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d records).\n", out, len(sum.Records))
			return nil
		},
	}
	taxes.Flags().Uint("contract", 0, "contract id")
	taxes.Flags().Int("year", 0, "year")
	taxes.Flags().String("out", "", "output file (default impuestos-<contract>-<year>.xlsx)")
	_ = taxes.MarkFlagRequired("contract")
	_ = taxes.MarkFlagRequired("year")
	cmd.AddCommand(taxes)
	return cmd
}
