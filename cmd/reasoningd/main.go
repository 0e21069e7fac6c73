// Command reasoningd is a small interactive demonstrator for the
// probability-tree and logical-inference engines. It dispatches the
// backends' named tool calls directly against in-process session
// façades; it is not an RPC or HTTP server, and argument parsing here is
// a convenience for local experimentation, not a contract any real
// collaborator should depend on.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepanalytics/reasoning-engines/internal/nemo"
	"github.com/deepanalytics/reasoning-engines/internal/session"
	"github.com/deepanalytics/reasoning-engines/internal/toolcall"
)

var (
	sessionID string
	logLevel  string

	logicPool    *nemo.Pool
	treeSessions = map[string]*session.TreeSession{}
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reasoningd",
		Short: "Exercise the probability-tree and logical-inference engines from a terminal",
	}
	root.PersistentFlags().StringVar(&sessionID, "session", "local", "session id to operate under")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newTreeCmd(), newLogicCmd())
	return root
}

func newLogger() *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func treeToolsFor(sessionID string, log *slog.Logger) toolcall.TreeTools {
	ts, ok := treeSessions[sessionID]
	if !ok {
		ts = session.NewTreeSession(sessionID, log)
		treeSessions[sessionID] = ts
	}
	return toolcall.TreeTools{Engine: ts.Engine()}
}

func logicToolsFor(sessionID string, log *slog.Logger) toolcall.LogicTools {
	if logicPool == nil {
		logicPool = nemo.NewPool(nil, log)
	}
	ls := session.NewLogicSession(sessionID, logicPool, log)
	return toolcall.LogicTools{Worker: ls.Worker()}
}

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Probability Tree Engine tool calls",
	}
	cmd.AddCommand(
		treeCreateCmd(), treeAddLeafCmd(), treeExpandLeafCmd(), treeNavigateCmd(),
		treePruneCmd(), treeExportCmd(), treeInspectCmd(), treeValidateCmd(), treeStatusCmd(),
	)
	return cmd
}

func treeCreateCmd() *cobra.Command {
	var complexity int
	cmd := &cobra.Command{
		Use:   "create-tree [premise]",
		Short: "create_tree{premise, complexity}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := treeToolsFor(sessionID, newLogger()).CreateTree(context.Background(), args[0], complexity)
			return printOrErr(out, err)
		},
	}
	cmd.Flags().IntVar(&complexity, "complexity", 5, "tree complexity, 1-10")
	return cmd
}

func treeAddLeafCmd() *cobra.Command {
	var reasoning string
	var probability float64
	var confidence int
	cmd := &cobra.Command{
		Use:   "add-leaf [premise]",
		Short: "add_leaf{premise, reasoning, probability, confidence}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := treeToolsFor(sessionID, newLogger()).AddLeaf(context.Background(), args[0], reasoning, probability, confidence)
			return printOrErr(out, err)
		},
	}
	cmd.Flags().StringVar(&reasoning, "reasoning", "", "supporting reasoning text")
	cmd.Flags().Float64Var(&probability, "probability", 0.5, "probability, 0-1")
	cmd.Flags().IntVar(&confidence, "confidence", 5, "confidence, 1-10")
	return cmd
}

func treeExpandLeafCmd() *cobra.Command {
	var rationale string
	cmd := &cobra.Command{
		Use:   "expand-leaf [node_id]",
		Short: "expand_leaf{node_id, rationale}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := treeToolsFor(sessionID, newLogger()).ExpandLeaf(context.Background(), args[0], rationale)
			return printOrErr(out, err)
		},
	}
	cmd.Flags().StringVar(&rationale, "rationale", "", "reason for expanding this leaf")
	return cmd
}

func treeNavigateCmd() *cobra.Command {
	var justification string
	cmd := &cobra.Command{
		Use:   "navigate-to [node_id]",
		Short: "navigate_to{node_id, justification}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := treeToolsFor(sessionID, newLogger()).NavigateTo(context.Background(), args[0], justification)
			return printOrErr(out, err)
		},
	}
	cmd.Flags().StringVar(&justification, "justification", "", "reason for moving the cursor")
	return cmd
}

func treePruneCmd() *cobra.Command {
	var aggressiveness float64
	cmd := &cobra.Command{
		Use:   "prune-tree",
		Short: "prune_tree{aggressiveness?}",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := treeToolsFor(sessionID, newLogger()).PruneTree(context.Background(), aggressiveness)
			return printOrErr(out, err)
		},
	}
	cmd.Flags().Float64Var(&aggressiveness, "aggressiveness", 0.5, "pruning aggressiveness, 0-1")
	return cmd
}

func treeExportCmd() *cobra.Command {
	var style string
	var insights []string
	var confidence float64
	cmd := &cobra.Command{
		Use:   "export-paths",
		Short: "export_paths{narrative_style, insights, confidence_assessment}",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := treeToolsFor(sessionID, newLogger()).ExportPaths(context.Background(), style, insights, confidence)
			return printOrErr(out, err)
		},
	}
	cmd.Flags().StringVar(&style, "style", "Strategic", "narrative style label")
	cmd.Flags().StringSliceVar(&insights, "insight", nil, "repeatable; at least 3 required")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.8, "confidence assessment, 0-1")
	return cmd
}

func treeInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect-tree",
		Short: "inspect_tree{}",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := treeToolsFor(sessionID, newLogger()).InspectTree(context.Background())
			return printOrErr(out, err)
		},
	}
}

func treeValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-coherence",
		Short: "validate_coherence{}",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := treeToolsFor(sessionID, newLogger()).ValidateCoherence(context.Background())
			return printOrErr(out, err)
		},
	}
}

func treeStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probability-status",
		Short: "probability_status{}",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := treeToolsFor(sessionID, newLogger()).ProbabilityStatus(context.Background())
			return printOrErr(out, err)
		},
	}
}

func newLogicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logic",
		Short: "Logical Inference Engine tool calls",
	}
	cmd.AddCommand(
		logicLoadFactCmd(), logicLoadRuleCmd(), logicLoadBulkCmd(), logicQueryCmd(), logicMaterializeCmd(),
		logicTraceCmd(), logicResetCmd(), logicListPremisesCmd(), logicValidateRuleCmd(),
		logicAnnotateCmd(), logicExplainCmd(),
	)
	return cmd
}

func logicLoadFactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load-fact [fact]",
		Short: "load_fact{fact}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(logicToolsFor(sessionID, newLogger()).LoadFact(context.Background(), args[0]))
			return nil
		},
	}
}

func logicLoadRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load-rule [rule]",
		Short: "load_rule{rule}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(logicToolsFor(sessionID, newLogger()).LoadRule(context.Background(), args[0]))
			return nil
		},
	}
}

func logicLoadBulkCmd() *cobra.Command {
	var atomic bool
	cmd := &cobra.Command{
		Use:   "load-bulk [datalog]",
		Short: "load_bulk{datalog, atomic?}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(logicToolsFor(sessionID, newLogger()).LoadBulk(context.Background(), args[0], atomic))
			return nil
		},
	}
	cmd.Flags().BoolVar(&atomic, "atomic", true, "roll back the whole block on any error")
	return cmd
}

func logicQueryCmd() *cobra.Command {
	var timeoutMs int
	cmd := &cobra.Command{
		Use:   "query [query]",
		Short: "query{query, timeout_ms?}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(logicToolsFor(sessionID, newLogger()).Query(context.Background(), args[0], timeoutMs))
			return nil
		},
	}
	cmd.Flags().IntVar(&timeoutMs, "timeout-ms", 5000, "query timeout budget")
	return cmd
}

func logicMaterializeCmd() *cobra.Command {
	var timeoutMs int
	cmd := &cobra.Command{
		Use:   "materialize",
		Short: "materialize{timeout_ms?}",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(logicToolsFor(sessionID, newLogger()).Materialize(context.Background(), timeoutMs))
			return nil
		},
	}
	cmd.Flags().IntVar(&timeoutMs, "timeout-ms", 10000, "materialize timeout budget")
	return cmd
}

func logicTraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-trace-json",
		Short: "get_trace_json{}",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(logicToolsFor(sessionID, newLogger()).GetTraceJSON(context.Background()))
			return nil
		},
	}
}

func logicResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "reset{}",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(logicToolsFor(sessionID, newLogger()).Reset(context.Background()))
			return nil
		},
	}
}

func logicListPremisesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-premises",
		Short: "list_premises{}",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(logicToolsFor(sessionID, newLogger()).ListPremises(context.Background()))
			return nil
		},
	}
}

func logicValidateRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-rule [rule]",
		Short: "validate_rule{rule}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(logicToolsFor(sessionID, newLogger()).ValidateRule(context.Background(), args[0]))
			return nil
		},
	}
}

func logicAnnotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-predicate-annotation [predicate] [annotation]",
		Short: "add_predicate_annotation{predicate, annotation}",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(logicToolsFor(sessionID, newLogger()).AddPredicateAnnotation(context.Background(), args[0], args[1]))
			return nil
		},
	}
	return cmd
}

func logicExplainCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "explain-inference [trace_json]",
		Short: "explain_inference{trace_json, short?}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(logicToolsFor(sessionID, newLogger()).ExplainInference(context.Background(), args[0], short))
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "return the canned short explanation")
	return cmd
}

func printOrErr(out string, err error) error {
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
