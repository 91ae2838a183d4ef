package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agenthub/orchestrator"
)

var workflowsStatusFilter string

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "Inspect retained workflows",
}

var workflowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List retained workflows",
	RunE:  runWorkflowsList,
}

var workflowsGetCmd = &cobra.Command{
	Use:   "get <workflow-id>",
	Short: "Show one workflow with its subtasks and history",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflowsGet,
}

func init() {
	workflowsListCmd.Flags().StringVar(&workflowsStatusFilter, "status", "", "filter by status (completed, failed, partial)")
	workflowsCmd.AddCommand(workflowsListCmd)
	workflowsCmd.AddCommand(workflowsGetCmd)
}

func runWorkflowsList(cmd *cobra.Command, args []string) error {
	hub, err := buildHub()
	if err != nil {
		return err
	}

	summaries, err := hub.ListWorkflows(orchestrator.WorkflowStatus(workflowsStatusFilter))
	if err != nil {
		return fmt.Errorf("list workflows: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Println("No workflows retained. Note: the memory backend only keeps workflows for the current process; configure store.backend: sqlite to persist them.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCREATED\tREQUEST")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Status, s.CreatedAt.Format("2006-01-02 15:04:05"), s.OriginalRequest)
	}
	return w.Flush()
}

func runWorkflowsGet(cmd *cobra.Command, args []string) error {
	hub, err := buildHub()
	if err != nil {
		return err
	}

	wf, err := hub.GetWorkflow(args[0])
	if err != nil {
		return fmt.Errorf("get workflow: %w", err)
	}

	fmt.Printf("Workflow %s (%s)\nRequest: %s\n\n", wf.ID, wf.Status, wf.OriginalRequest)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SUBTASK\tSTATUS\tAGENT\tRESULT/ERROR")
	for _, st := range wf.Subtasks {
		out := st.Result
		if st.Error != "" {
			out = st.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", st.ID, st.Status, st.AssignedAgentID, out)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nHistory:")
	for _, h := range wf.History {
		line := fmt.Sprintf("  %s  %s %s", h.Timestamp.Format("15:04:05.000"), h.SubtaskID, h.Event)
		if h.AgentID != "" {
			line += " agent=" + h.AgentID
		}
		if h.Detail != "" {
			line += " (" + h.Detail + ")"
		}
		fmt.Println(line)
	}
	return nil
}
