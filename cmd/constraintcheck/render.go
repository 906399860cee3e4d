package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/eval"
	"github.com/wikiconstraint/engine/wikiconstraint/intern"
)

// render prints a Result the way the CLI reports it: score-only mode
// prints just the integer (for scripting), verbose mode prints every
// non-zero contribution, the default prints violated/fixed summaries.
func render(result *eval.Result, verbose, scoreOnly bool) {
	if scoreOnly {
		fmt.Println(result.Score)
		return
	}

	fmt.Printf("score: %d\n\n", result.Score)

	if verbose {
		printTable("contributions", result.Evaluated)
		return
	}

	if violated := result.GetViolatedConstraints(); len(violated) > 0 {
		color.Red("violated (%d):", len(violated))
		for _, c := range violated {
			fmt.Printf("  %s\n", c)
		}
	}
	if fixed := result.GetFixedConstraints(); len(fixed) > 0 {
		color.Green("fixed (%d):", len(fixed))
		for _, c := range fixed {
			fmt.Printf("  %s\n", c)
		}
	}
}

func printTable(title string, evaluations []eval.Evaluation) {
	var sb strings.Builder
	table := tablewriter.NewTable(&sb,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"constraint", "scope", "status", "score"})
	for _, e := range evaluations {
		table.Append([]string{
			e.Constraint.String(),
			scopeSetLabel(e.Constraint.Scopes),
			intern.StatusLabel(e.Constraint.Status),
			fmt.Sprintf("%+d", e.Score),
		})
	}
	table.Render()

	fmt.Printf("%s:\n%s\n", title, sb.String())
}

// scopeSetLabel joins the interned label of each scope present in set,
// in Main/Qualifier/Reference order.
func scopeSetLabel(set wikiconstraint.ScopeSet) string {
	var labels []string
	for _, s := range []wikiconstraint.Scope{wikiconstraint.ScopeMain, wikiconstraint.ScopeQualifier, wikiconstraint.ScopeReference} {
		if set.Has(s) {
			labels = append(labels, intern.ScopeLabel(s))
		}
	}
	return strings.Join(labels, ",")
}
