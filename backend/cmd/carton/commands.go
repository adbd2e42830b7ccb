package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"carton/backend/internal/app"
	"carton/backend/internal/mcpserver"
	"carton/backend/internal/tools"
	"carton/backend/pkg/config"
	"carton/backend/pkg/logger"
)

// newApp wires the application; tests replace it.
var newApp = func(ctx context.Context, requireGraph bool) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Env); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return app.Build(ctx, cfg, app.Options{RequireGraph: requireGraph})
}

func newRootCmd() *cobra.Command {
	var requireGraph bool

	rootCmd := &cobra.Command{
		Use:           "carton",
		Short:         "Maintain a linked concept wiki and its knowledge graph",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&requireGraph, "require-graph", false, "fail when Neo4j is unreachable instead of running on documents only")

	// withApp runs fn against a freshly wired application.
	withApp := func(fn func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), requireGraph)
			if err != nil {
				return err
			}
			defer a.Close()
			defer logger.Sync()
			return fn(cmd, a, args)
		}
	}

	serveCmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the concept tools and prompts over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			return mcpserver.ServeStdio(mcpserver.New(a.Executor))
		}),
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Rescan every concept and rebuild the missing concept ledger",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			return runTool(cmd, a, tools.ToolCalculateMissing, nil)
		}),
	}

	missingCmd := &cobra.Command{
		Use:   "missing",
		Short: "List concepts that are referenced but do not exist",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			return runTool(cmd, a, tools.ToolListMissingConcepts, nil)
		}),
	}

	var threshold float64
	dedupeCmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Report groups of likely duplicate concepts",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			toolArgs := map[string]interface{}{}
			if cmd.Flags().Changed("threshold") {
				toolArgs["similarity_threshold"] = threshold
			}
			return runTool(cmd, a, tools.ToolDeduplicateConcepts, toolArgs)
		}),
	}
	dedupeCmd.Flags().Float64Var(&threshold, "threshold", 0, "name similarity threshold between 0 and 1 (defaults to the configured value)")

	autolinkCmd := &cobra.Command{
		Use:   "autolink",
		Short: "Re-run auto-linking over every stored description",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			return runTool(cmd, a, tools.ToolRetroactiveAutolink, nil)
		}),
	}

	var description string
	var relations []string
	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create or rewrite a concept",
		Example: `  carton add gravity --description "A force." --rel is_a=Force
  carton add apple --rel is_a=Fruit --rel part_of=Tree,Orchard`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			rels, err := parseRelations(relations)
			if err != nil {
				return err
			}
			return runTool(cmd, a, tools.ToolAddConcept, map[string]interface{}{
				"concept_name":  args[0],
				"concept":       description,
				"relationships": rels,
			})
		}),
	}
	addCmd.Flags().StringVarP(&description, "description", "d", "", "concept description")
	addCmd.Flags().StringArrayVarP(&relations, "rel", "r", nil, "relationship as type=Target[,Target...] (repeatable)")

	promptCmd := &cobra.Command{
		Use:   "prompt NAME [key=value...]",
		Short: "Render a prompt template",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]string, len(args)-1)
			for _, kv := range args[1:] {
				key, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("expected key=value, got %q", kv)
				}
				values[key] = value
			}
			text, err := tools.RenderPrompt(args[0], values)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	var reset bool
	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the Neo4j graph from the concept documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()
			defer logger.Sync()
			return runReindex(cmd, a, reset)
		},
	}
	reindexCmd.Flags().BoolVar(&reset, "reset", false, "delete every :Wiki node before rebuilding")

	rootCmd.AddCommand(serveCmd, scanCmd, missingCmd, dedupeCmd, autolinkCmd, addCmd, promptCmd, reindexCmd)
	return rootCmd
}

// parseRelations turns type=A,B flags into relationship objects.
func parseRelations(flags []string) ([]interface{}, error) {
	rels := make([]interface{}, 0, len(flags))
	for _, f := range flags {
		relType, targets, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(relType) == "" || strings.TrimSpace(targets) == "" {
			return nil, fmt.Errorf("expected type=Target[,Target...], got %q", f)
		}
		related := []interface{}{}
		for _, t := range strings.Split(targets, ",") {
			if t = strings.TrimSpace(t); t != "" {
				related = append(related, t)
			}
		}
		rels = append(rels, map[string]interface{}{
			"relationship": strings.TrimSpace(relType),
			"related":      related,
		})
	}
	return rels, nil
}

// runTool executes one tool and prints its result as JSON.
func runTool(cmd *cobra.Command, a *app.App, name string, args map[string]interface{}) error {
	result := a.Executor.Execute(cmd.Context(), tools.ToolCall{Name: name, Arguments: args})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if !result.Success {
		return fmt.Errorf("%s failed: %s", name, result.Error)
	}
	return nil
}

// runReindex optionally clears the wiki namespace and saves every stored
// concept back into the graph.
func runReindex(cmd *cobra.Command, a *app.App, reset bool) error {
	if reset {
		if a.Graph == nil {
			return fmt.Errorf("--reset needs a graph connection")
		}
		deleted, err := a.Graph.ResetWiki(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d wiki nodes\n", deleted)
		if err := a.Graph.EnsureIndexes(cmd.Context()); err != nil {
			return err
		}
	}

	result, err := a.Engine.RebuildGraph(cmd.Context())
	if result != nil {
		out, merr := json.MarshalIndent(result, "", "  ")
		if merr != nil {
			return merr
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	}
	return err
}
