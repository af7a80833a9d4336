// Package main provides the seller-console CLI: list, edit and convert
// leads against a CRM backend from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xavierca1/seller-console/internal/cache"
	"github.com/xavierca1/seller-console/internal/entity"
	"github.com/xavierca1/seller-console/internal/infra/prefstore"
	"github.com/xavierca1/seller-console/internal/infra/remote"
	"github.com/xavierca1/seller-console/internal/usecase"
	"github.com/xavierca1/seller-console/internal/view"
)

var (
	// configFile is set by the --config flag.
	configFile string

	app *consoleApp
)

// consoleApp wires the engines for one CLI invocation.
type consoleApp struct {
	cache     *cache.Store
	view      *view.Leads
	editor    *usecase.EditLeadUseCase
	converter *usecase.ConvertLeadUseCase
	loader    *usecase.LoadWorkspaceUseCase
	prefs     prefstore.Store
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "Seller console for the sales pipeline",
	Long: `Seller console manages a working set of sales leads: search, filter
and sort the pipeline, edit lead contact details with optimistic persistence
against the CRM backend, and convert qualified leads into opportunities.`,
	PersistentPreRunE: initApp,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ~/.seller-console/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(leadsCmd)
	rootCmd.AddCommand(opportunitiesCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(convertCmd)

	leadsCmd.Flags().String("query", "", "search by name or company")
	leadsCmd.Flags().String("status", "", "filter by status (all, new, contacted, qualified, unqualified)")
	leadsCmd.Flags().String("sort", "", "toggle sort on a field (score, name, company)")

	editCmd.Flags().String("email", "", "new email address")
	editCmd.Flags().String("status", "", "new status")

	convertCmd.Flags().String("name", "", "opportunity name (default: \"<company> - <name>\")")
	convertCmd.Flags().String("account", "", "account name (default: lead company)")
	convertCmd.Flags().String("stage", "", "initial stage (default: prospecting)")
	convertCmd.Flags().Float64("amount", 0, "estimated amount")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("seller-console v1.0.0")
	},
}

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List the lead pipeline",
	Long: `List the lead pipeline through the saved search/filter/sort
preference. Flags adjust the preference and persist it for the next run.`,
	RunE: runLeads,
}

func runLeads(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if cmd.Flags().Changed("query") {
		q, _ := cmd.Flags().GetString("query")
		if err := app.view.SetQuery(ctx, q); err != nil {
			return fmt.Errorf("persist preference: %w", err)
		}
	}
	if cmd.Flags().Changed("status") {
		s, _ := cmd.Flags().GetString("status")
		if s != view.StatusFilterAll && !entity.LeadStatus(s).Valid() {
			return fmt.Errorf("unknown status %q", s)
		}
		if err := app.view.SetStatusFilter(ctx, s); err != nil {
			return fmt.Errorf("persist preference: %w", err)
		}
	}
	if cmd.Flags().Changed("sort") {
		f, _ := cmd.Flags().GetString("sort")
		field := view.SortField(f)
		if !field.Valid() {
			return fmt.Errorf("unknown sort field %q", f)
		}
		if err := app.view.ToggleSort(ctx, field); err != nil {
			return fmt.Errorf("persist preference: %w", err)
		}
	}

	rows := app.view.Rows()
	pref := app.view.Preference()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tEMAIL\tSOURCE\tSCORE\tSTATUS")
	for _, lead := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			lead.ID, lead.Name, lead.Company, lead.Email, lead.Source, lead.Score, lead.Status)
	}
	w.Flush()

	fmt.Printf("\n%d leads (sorted by %s %s", len(rows), pref.SortField, pref.SortDirection)
	if pref.StatusFilter != view.StatusFilterAll {
		fmt.Printf(", status %s", pref.StatusFilter)
	}
	fmt.Println(")")
	return nil
}

var opportunitiesCmd = &cobra.Command{
	Use:   "opportunities",
	Short: "List opportunities",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tACCOUNT\tSTAGE\tAMOUNT\tFROM LEAD")
		for _, opp := range app.cache.Opportunities() {
			amount := "-"
			if opp.Amount != nil {
				amount = fmt.Sprintf("%.2f", *opp.Amount)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				opp.ID, opp.Name, opp.AccountName, opp.Stage, amount, opp.CreatedFrom)
		}
		return w.Flush()
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <lead-id>",
	Short: "Edit a lead's email or status",
	Long: `Edit applies the change optimistically and persists it to the CRM.
If the CRM rejects the update, the lead is restored to its previous state.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	leadID := args[0]

	if !cmd.Flags().Changed("email") && !cmd.Flags().Changed("status") {
		return fmt.Errorf("nothing to change: pass --email and/or --status")
	}

	session, err := app.editor.BeginEdit(leadID)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("email") {
		email, _ := cmd.Flags().GetString("email")
		if err := app.editor.ApplyField(session, usecase.FieldEmail, email); err != nil {
			app.editor.Cancel(session)
			return err
		}
	}
	if cmd.Flags().Changed("status") {
		status, _ := cmd.Flags().GetString("status")
		if err := app.editor.ApplyField(session, usecase.FieldStatus, status); err != nil {
			app.editor.Cancel(session)
			return err
		}
	}

	lead, err := app.editor.Commit(cmd.Context(), session)
	if err != nil {
		if usecase.IsValidationError(err) {
			app.editor.Cancel(session)
			return fmt.Errorf("not saved: %v", err)
		}
		if session.Open() {
			// Reopened after an email rejection; one-shot run, drop it.
			app.editor.Cancel(session)
		}
		return fmt.Errorf("update failed, changes reverted: %v", err)
	}

	fmt.Printf("lead %s saved: email=%s status=%s\n", lead.ID, lead.Email, lead.Status)
	return nil
}

var convertCmd = &cobra.Command{
	Use:   "convert <lead-id>",
	Short: "Convert a lead into an opportunity",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	leadID := args[0]

	var input usecase.ConvertLeadInput
	if cmd.Flags().Changed("name") {
		name, _ := cmd.Flags().GetString("name")
		input.Name = &name
	}
	if cmd.Flags().Changed("account") {
		account, _ := cmd.Flags().GetString("account")
		input.AccountName = &account
	}
	if cmd.Flags().Changed("stage") {
		stage, _ := cmd.Flags().GetString("stage")
		s := entity.OpportunityStage(stage)
		input.Stage = &s
	}
	if cmd.Flags().Changed("amount") {
		amount, _ := cmd.Flags().GetFloat64("amount")
		input.Amount = &amount
	}

	opportunity, err := app.converter.Execute(cmd.Context(), leadID, input)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	fmt.Printf("converted: %s (%s, stage %s)\n", opportunity.Name, opportunity.ID, opportunity.Stage)
	return nil
}

// initApp loads config, opens the preference store and pulls the workspace.
func initApp(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var store usecase.RemoteStore
	if url := cfg.GetString(cfgKeyAPIURL); url != "" {
		store = remote.NewClient(url, cfg.GetString(cfgKeyAPIKey))
	} else {
		// No backend configured: run against the embedded demo store.
		store = remote.NewMemory(remote.SeedLeads())
	}

	prefs, err := openPrefs(cfg.GetString(cfgKeyPrefsPath))
	if err != nil {
		return fmt.Errorf("open preference store: %w", err)
	}

	collection := cache.NewStore()
	app = &consoleApp{
		cache:     collection,
		view:      view.NewLeads(collection, prefs),
		editor:    usecase.NewEditLeadUseCase(collection, store, nil),
		converter: usecase.NewConvertLeadUseCase(collection, store, nil),
		loader:    usecase.NewLoadWorkspaceUseCase(collection, store),
		prefs:     prefs,
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if _, err := app.loader.Execute(ctx); err != nil {
		prefs.Close()
		return fmt.Errorf("load workspace: %w", err)
	}
	return nil
}

func closeApp() error {
	if app != nil {
		return app.prefs.Close()
	}
	return nil
}
