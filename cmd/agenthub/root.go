package main

import (
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/hupe1980/agenthub"
	"github.com/hupe1980/agenthub/agent"
	"github.com/hupe1980/agenthub/config"
	"github.com/hupe1980/agenthub/dispatcher"
	"github.com/hupe1980/agenthub/model"
	"github.com/hupe1980/agenthub/model/anthropic"
	"github.com/hupe1980/agenthub/model/openai"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "agenthub",
	Short: "Multi-agent assistant over a message bus",
	Long: `AgentHub routes user queries to a set of cooperating agents.

Simple queries are answered by a single agent; multi-step requests are
decomposed into a workflow and executed across agents with dependency
tracking. Finished workflows are retained and can be inspected with the
workflows subcommands.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: ./config.yaml or ~/.config/agenthub)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(workflowsCmd)
}

// defaultRules route well-known phrasings to the built-in agents.
func defaultRules() []dispatcher.Rule {
	return []dispatcher.Rule{
		{Keywords: []string{"remember", "recall", "forget"}, TargetAgentID: "memory", Confidence: 0.9},
		{Keywords: []string{"time", "date", "goroutine", "uptime"}, TargetAgentID: "system", Confidence: 0.8},
		{Keywords: []string{"code", "function", "script", "program"}, TargetAgentID: "coder", Confidence: 0.7},
		{Keywords: []string{"echo"}, TargetAgentID: "echo", Confidence: 0.9},
	}
}

// buildHub loads configuration and wires the default agent roster.
func buildHub() (*agenthub.AgentHub, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	hub, err := agenthub.FromConfig(cfg, func(o *agenthub.Options) {
		o.ClassifierRules = defaultRules()
	})
	if err != nil {
		return nil, err
	}

	m := pickModel(cfg)

	hub.RegisterAgent(agent.NewEchoAgent("echo"))
	hub.RegisterAgent(agent.NewSystemAgent("system"))
	hub.RegisterAgent(agent.NewMemoryAgent("memory", nil))
	hub.RegisterAgent(agent.NewCodeAgent("coder", m))
	hub.RegisterAgent(agent.NewModelAgent("assistant", m))

	return hub, nil
}

// pickModel prefers Anthropic, then OpenAI, then the offline mock.
func pickModel(cfg *config.Config) model.Model {
	if cfg.Anthropic.APIKey != "" {
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.Anthropic.APIKey
			if cfg.Anthropic.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Anthropic.Model)
			}
		})
	}
	if cfg.OpenAI.APIKey != "" {
		return openai.NewModel(func(o *openai.Options) {
			if cfg.OpenAI.Model != "" {
				o.Model = cfg.OpenAI.Model
			}
		})
	}
	return model.NewMockModel("offline")
}
