package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wolfman30/leadrelay/internal/app/bootstrap"
	appconfig "github.com/wolfman30/leadrelay/internal/config"
	"github.com/wolfman30/leadrelay/internal/leads"
	"github.com/wolfman30/leadrelay/internal/notify"
	"github.com/wolfman30/leadrelay/internal/templates"
	"github.com/wolfman30/leadrelay/pkg/logging"
)

var purposes = []templates.Purpose{templates.PurposeOrder, templates.PurposeAutoreply}

func newTemplatesCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Check and preview message templates",
		Long: `Template sets are read from <dir>/email-order.conf and
<dir>/email-to-client.conf, falling back to the LEAD_EMAIL_* settings
for the operator notification.`,
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "templates directory (default TEMPLATES_DIR)")

	check := &cobra.Command{
		Use:   "check",
		Short: "Parse template files and report unconfigured sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appconfig.Load()
			return runCheck(cmd.OutOrStdout(), cfg, templatesDir(cfg, dir))
		},
	}

	var purpose string
	preview := &cobra.Command{
		Use:   "preview",
		Short: "Render a template set against a sample lead",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appconfig.Load()
			return runPreview(cmd.OutOrStdout(), cfg, templatesDir(cfg, dir), templates.Purpose(purpose))
		},
	}
	preview.Flags().StringVar(&purpose, "purpose", string(templates.PurposeOrder), "email-order or email-to-client")

	cmd.AddCommand(check, preview)
	return cmd
}

func templatesDir(cfg *appconfig.Config, flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.TemplatesDir
}

func runCheck(out io.Writer, cfg *appconfig.Config, dir string) error {
	files := map[templates.Purpose]map[string]string{}
	var failed bool

	for _, purpose := range purposes {
		path := filepath.Join(dir, string(purpose)+".conf")
		values, err := templates.LoadKeyFile(path)
		var parseErr *templates.ParseError
		switch {
		case errors.Is(err, os.ErrNotExist):
			fmt.Fprintf(out, "%s: %s not found\n", purpose, path)
		case errors.As(err, &parseErr):
			fmt.Fprintf(out, "%s: %v\n", purpose, parseErr)
			failed = true
		case err != nil:
			return fmt.Errorf("read %s: %w", path, err)
		default:
			files[purpose] = values
		}
	}

	resolver := templates.NewResolver(files, templates.EnvDefaults(cfg))
	for _, purpose := range purposes {
		set, err := resolver.Resolve(purpose)
		if err != nil {
			fmt.Fprintf(out, "%s: not configured, channel will be skipped\n", purpose)
			continue
		}
		fmt.Fprintf(out, "%s: ok (text=%t html=%t from_mode=%q)\n",
			purpose, set.Text != "", set.HTML != "", set.FromMode)
	}

	if failed {
		return errors.New("template files contain errors")
	}
	return nil
}

func runPreview(out io.Writer, cfg *appconfig.Config, dir string, purpose templates.Purpose) error {
	if purpose != templates.PurposeOrder && purpose != templates.PurposeAutoreply {
		return fmt.Errorf("unknown purpose %q", purpose)
	}
	resolver := templates.LoadResolver(dir, templates.EnvDefaults(cfg), logging.Discard())
	set, err := resolver.Resolve(purpose)
	if err != nil {
		return fmt.Errorf("%s: %w", purpose, err)
	}

	lead := sampleLead()
	policy := bootstrap.AutoreplyFromPolicy(cfg)
	if purpose == templates.PurposeOrder {
		policy = bootstrap.OrderFromPolicy(cfg)
	}

	raw, html := notify.Variables(lead, cfg.SiteURL)
	rendered := notify.RenderSet(set, raw, html)

	if id, err := policy.WithTemplateSet(set).Resolve(lead); err != nil {
		fmt.Fprintf(out, "From: (%v)\n", err)
	} else {
		fmt.Fprintf(out, "From: %s\n", id.From)
		if !id.ReplyTo.IsZero() {
			fmt.Fprintf(out, "Reply-To: %s\n", id.ReplyTo)
		}
	}
	fmt.Fprintf(out, "Subject: %s\n", rendered.Subject)
	if rendered.Text != "" {
		fmt.Fprintf(out, "\n--- text ---\n%s\n", rendered.Text)
	}
	if rendered.HTML != "" {
		fmt.Fprintf(out, "\n--- html ---\n%s\n", rendered.HTML)
	}
	return nil
}

func sampleLead() *leads.Lead {
	return &leads.Lead{
		ID:            "preview",
		Name:          "Jane Doe",
		Company:       "Northwind Freight",
		Email:         "jane@example.com",
		Phone:         "+1 555 0100",
		Message:       "Please call me back about <customs> paperwork.",
		DocumentTypes: []string{"invoice", "packing list"},
		CreatedAt:     time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		SourceIP:      "203.0.113.10",
	}
}
