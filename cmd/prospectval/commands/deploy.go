package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leadvet/prospectval/internal/n8n"
)

var deployFlags struct {
	SnippetsDir string
	Snippet     string
	List        bool
	DryRun      bool
	Host        string
	APIKey      string
}

var deployCmd = &cobra.Command{
	Use:           "deploy",
	Short:         "Sync validation snippets into n8n workflows",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `Deploy pushes registered code snippets into the n8n workflows that use
them, via the n8n REST API.

A workflow Code node opts in by carrying a "# snippet: <id>" marker
comment in its source; deploy replaces the node's code with the current
registry content. The registry is a snippet_registry.json file listing
snippet ids, names, and source files.

Connection settings come from --host/--api-key, the N8N_HOST and
N8N_API_KEY environment variables, or the config file, in that order.

Examples:
  # List registered snippets
  prospectval deploy --list

  # Deploy every snippet
  prospectval deploy

  # Deploy one snippet, showing what would change
  prospectval deploy --snippet prospect_validator --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		dir := deployFlags.SnippetsDir
		if !cmd.Flags().Changed("snippets-dir") && rootConfig.Deploy.Registry != "" {
			dir = rootConfig.Deploy.Registry
		}

		registry, err := n8n.LoadRegistry(dir)
		if err != nil {
			return err
		}

		if deployFlags.List {
			fmt.Println("Available snippets:")
			for _, snippet := range registry.Snippets {
				fmt.Printf("  %s: %s\n", snippet.ID, snippet.Name)
				if snippet.Description != "" {
					fmt.Printf("    %s\n", snippet.Description)
				}
			}
			return nil
		}

		client, err := n8n.NewClient(n8n.Config{
			Host:   resolveDeploySetting(deployFlags.Host, n8n.EnvHost, rootConfig.Deploy.Host),
			APIKey: resolveDeploySetting(deployFlags.APIKey, n8n.EnvAPIKey, rootConfig.Deploy.APIKey),
		})
		if err != nil {
			cmd.SilenceUsage = false
			return UsageError{err}
		}

		snippets := registry.Snippets
		if deployFlags.Snippet != "" {
			snippet, ok := registry.Find(deployFlags.Snippet)
			if !ok {
				return ExitWithCode(1, fmt.Errorf("snippet %q not found in registry", deployFlags.Snippet))
			}
			snippets = []n8n.Snippet{snippet}
		}

		deployer := n8n.NewDeployer(client, rootLogger)
		deployer.DryRun = deployFlags.DryRun

		if deployFlags.DryRun {
			fmt.Println("--- DRY RUN MODE (no changes will be made) ---")
		}

		totalUpdated := 0
		for _, snippet := range snippets {
			fmt.Printf("Deploying snippet: %s\n", snippet.Name)
			code, err := registry.Code(snippet)
			if err != nil {
				return err
			}
			updated, err := deployer.DeploySnippet(ctx, snippet.ID, code)
			if err != nil {
				return ExitWithCode(1, fmt.Errorf("failed to deploy %s: %w", snippet.ID, err))
			}
			totalUpdated += updated
		}

		if deployFlags.DryRun {
			fmt.Printf("\nDry run complete: %d workflow(s) would be updated\n", totalUpdated)
		} else {
			fmt.Printf("\nDeployment complete: %d workflow(s) updated\n", totalUpdated)
		}
		return nil
	},
}

// resolveDeploySetting applies the precedence flag > environment > config
// file for one connection setting.
func resolveDeploySetting(flagValue, envName, fileValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return fileValue
}

func init() {
	deployCmd.Flags().StringVar(&deployFlags.SnippetsDir, "snippets-dir", n8n.DefaultSnippetsDir, "Directory containing the snippet registry and files")
	deployCmd.Flags().StringVarP(&deployFlags.Snippet, "snippet", "s", "", "Deploy only the snippet with this id")
	deployCmd.Flags().BoolVarP(&deployFlags.List, "list", "l", false, "List registered snippets and exit")
	deployCmd.Flags().BoolVarP(&deployFlags.DryRun, "dry-run", "n", false, "Show what would be deployed without writing")
	deployCmd.Flags().StringVar(&deployFlags.Host, "host", "", "n8n instance URL (defaults to $N8N_HOST)")
	deployCmd.Flags().StringVar(&deployFlags.APIKey, "api-key", "", "n8n API key (defaults to $N8N_API_KEY)")
}
