package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rushteam/shoprec/store"
)

var version = "0.1.0-dev"

var errMemoryImport = errors.New("import: the memory store backend does not keep data between runs, configure store.backend sqlite or redis")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shoprec",
		Short: "Explainable content-based product recommendations",
		Long: `shoprec recommends products from a catalog based on what a user has
viewed, added to cart or purchased, and explains each recommendation
with a short sentence from a chat completions model.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default $SHOPREC_CONFIG or ./shoprec.yaml)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRecommendCmd(),
		newActivityCmd(),
		newUsersCmd(),
		newImportCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd, map[string]string{"version": version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "shoprec version %s\n", version)
			return nil
		},
	}
}

func newRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend products for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			recs, err := a.svc.Recommend(cmd.Context(), userID)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd, map[string]any{"user_id": userID, "recommendations": recs})
			}
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No recommendations.")
				return nil
			}
			for i, r := range recs {
				fmt.Fprintf(out, "%d. %s [%s] (%s)\n", i+1, r.Product.Name, r.Product.Category, r.Product.ID)
				if r.Explanation != nil {
					fmt.Fprintf(out, "   %s\n", *r.Explanation)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("user", "", "User ID (required)")
	cmd.MarkFlagRequired("user")
	return cmd
}

func newActivityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show a user's recent activity grouped by interaction type",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			act, err := a.svc.Activity(cmd.Context(), userID)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd, act)
			}
			out := cmd.OutOrStdout()
			for _, group := range []struct {
				title    string
				products []string
			}{
				{"Viewed", names(act.Viewed)},
				{"Added to cart", names(act.AddedToCart)},
				{"Purchased", names(act.Purchased)},
			} {
				fmt.Fprintf(out, "%s:\n", group.title)
				if len(group.products) == 0 {
					fmt.Fprintln(out, "  (none)")
				}
				for _, n := range group.products {
					fmt.Fprintf(out, "  - %s\n", n)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("user", "", "User ID (required)")
	cmd.MarkFlagRequired("user")
	return cmd
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			users, err := a.svc.Users(cmd.Context())
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd, map[string]any{"users": users})
			}
			for _, u := range users {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", u.UserID, u.Name)
			}
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import products, users and interactions from a JSON fixture",
		Long: `Import products, users and interactions from a JSON fixture into the
configured store. Existing products keep their catalog position.

Example:
  shoprec import --file ./fixtures/shop.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			f, err := store.LoadFixture(path)
			if err != nil {
				return err
			}
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.cfg.Store.Backend == "memory" {
				return errMemoryImport
			}

			if err := store.Import(cmd.Context(), a.backend, f); err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"status":       "imported",
					"backend":      a.backend.Name(),
					"products":     len(f.Products),
					"users":        len(f.Users),
					"interactions": len(f.Interactions),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products, %d users, %d interactions into %s\n",
				len(f.Products), len(f.Users), len(f.Interactions), a.backend.Name())
			return nil
		},
	}
	cmd.Flags().String("file", "", "Fixture file (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}
