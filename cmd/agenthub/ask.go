package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask the assistant a question",
	Long: `Route a query through the dispatcher.

Simple queries are delegated to a single agent or answered directly;
multi-step requests ("do X and then Y") are decomposed into a workflow.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	hub, err := buildHub()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	resp, err := hub.Ask(cmd.Context(), query, nil)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	fmt.Println(resp.Content)
	if id, ok := resp.Metadata["workflow_id"].(string); ok {
		fmt.Printf("\n(workflow %s, inspect with: agenthub workflows get %s)\n", id, id)
	}
	return nil
}
