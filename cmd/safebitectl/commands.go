package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"safebite/internal/config"
	"safebite/internal/domain"
	"safebite/internal/engine"
	"safebite/internal/llm"
	"safebite/internal/llm/providers"
	"safebite/internal/logger"
	"safebite/internal/service"
)

type rootOptions struct {
	aliasFile string
	allergens []string
	gateway   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "safebitectl",
		Short:         "Offline tools for the SafeBite allergen engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.aliasFile, "alias-file", "", "extra YAML alias table merged over the built-in one")

	root.AddCommand(
		newNormalizeCmd(),
		newCheckCmd(opts),
		newReconcileCmd(opts),
		newAliasesCmd(opts),
		newTokenCmd(),
	)
	return root
}

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize TEXT...",
		Short: "Print the canonical form of each argument",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range args {
				n, err := engine.Normalize(a)
				if err != nil {
					return fmt.Errorf("%q: %w", a, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check EVIDENCE",
		Short: "Check evidence text against the given allergens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := loadResolver(opts.aliasFile)
			if err != nil {
				return err
			}
			allergens, err := buildAllergens(resolver, opts.allergens)
			if err != nil {
				return err
			}

			eng, err := buildEngine(resolver, opts.gateway)
			if err != nil {
				return err
			}
			verdict, err := eng.CheckSafety(cmd.Context(), args[0], allergens)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), verdict)
		},
	}
	cmd.Flags().StringSliceVarP(&opts.allergens, "allergens", "a", nil, "comma-separated allergen names")
	cmd.Flags().BoolVar(&opts.gateway, "gateway", false, "consult the configured reasoning gateway on inconclusive evidence")
	return cmd
}

func newReconcileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile TEXT",
		Short: "Split label text into known allergens and new candidates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := loadResolver(opts.aliasFile)
			if err != nil {
				return err
			}
			allergens, err := buildAllergens(resolver, opts.allergens)
			if err != nil {
				return err
			}
			eng := engine.New(engine.Config{}, resolver, nil, nil)
			rec, err := eng.Reconcile(args[0], allergens, nil, time.Now().UTC())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().StringSliceVarP(&opts.allergens, "allergens", "a", nil, "comma-separated allergen names")
	return cmd
}

func newAliasesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "aliases [FAMILY]",
		Short: "List alias families, or the aliases of one family",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := loadResolver(opts.aliasFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, f := range resolver.Families() {
					fmt.Fprintln(out, f)
				}
				return nil
			}
			aliases := resolver.AliasesOf(args[0])
			if aliases == nil {
				return fmt.Errorf("%q is not an alias family", args[0])
			}
			fmt.Fprintln(out, strings.Join(aliases, "\n"))
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token [OWNER_ID]",
		Short: "Mint a bearer token with the configured JWT secret",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ownerID := uuid.New()
			if len(args) == 1 {
				if ownerID, err = uuid.Parse(args[0]); err != nil {
					return fmt.Errorf("invalid owner id: %w", err)
				}
			}
			token, expiry, err := service.NewAuthService(&cfg.JWT).IssueToken(ownerID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"owner_id":   ownerID,
				"token":      token,
				"expires_at": expiry,
			})
		},
	}
}

func loadResolver(aliasFile string) (*engine.Resolver, error) {
	table := engine.DefaultTable()
	if aliasFile != "" {
		extra, err := engine.LoadTableFile(aliasFile)
		if err != nil {
			return nil, err
		}
		table.Merge(extra)
	}
	return engine.NewResolver(table)
}

// buildAllergens turns raw names into an in-memory allergen set with the
// same canonicalization and alias expansion as registration.
func buildAllergens(resolver *engine.Resolver, names []string) ([]domain.Allergen, error) {
	seen := map[string]bool{}
	var out []domain.Allergen
	for _, raw := range names {
		name, err := service.CanonicalAllergenName(raw)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", raw, err)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, domain.Allergen{
			ID:            uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
			CanonicalName: name,
			Aliases:       resolver.AliasesOf(name),
		})
	}
	return out, nil
}

func buildEngine(resolver *engine.Resolver, withGateway bool) (*engine.Engine, error) {
	if !withGateway {
		return engine.New(engine.Config{}, resolver, nil, nil), nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	lg, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	providers.Register()
	cfg.Gateway.Enabled = true
	gw, err := llm.BuildGateway(&cfg.Gateway, nil, nil, lg)
	if err != nil {
		return nil, err
	}
	lg.Debug("gateway enabled", zap.String("primary", cfg.Gateway.Primary.Provider))
	return engine.New(engine.Config{
		FuzzyThreshold:    cfg.Matching.FuzzyThreshold,
		AliasScore:        cfg.Matching.AliasScore,
		MinEvidenceTokens: cfg.Matching.MinEvidenceTokens,
		MinTokenLength:    cfg.Matching.MinTokenLength,
		GatewayTimeout:    cfg.Gateway.Timeout,
	}, resolver, gw, lg), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
