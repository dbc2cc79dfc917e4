package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"relexer/internal/config"
	"relexer/internal/lexer"
)

func newRulesCommand(ctx *commandContext) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the configured rule set",
	}

	rulesCmd.AddCommand(newRulesCheckCommand(ctx))
	rulesCmd.AddCommand(newRulesListCommand(ctx))

	return rulesCmd
}

func newRulesCheckCommand(ctx *commandContext) *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate and compile the rules, then print the combined pattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.withRules(rulesPath)
			if err != nil {
				return err
			}
			lx, err := lexer.New(cfg.RuleSet(nil))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rules valid: %d\n", lx.Len())
			fmt.Fprintf(out, "Pattern: %s\n", lx.Pattern())
			return nil
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "TOML file whose [[rules]] replace the configured rules")
	return cmd
}

type ruleView struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Skip    bool   `json:"skip"`
}

func newRulesListCommand(ctx *commandContext) *cobra.Command {
	var rulesPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules in declaration order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.withRules(rulesPath)
			if err != nil {
				return err
			}
			views := ruleViews(cfg.Rules)
			if asJSON {
				return writeRuleViews(cmd.OutOrStdout(), views)
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{strconv.Itoa(v.Index), v.Name, v.Pattern, yesNo(v.Skip)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Name", "Pattern", "Skip"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "TOML file whose [[rules]] replace the configured rules")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func ruleViews(list []config.Rule) []ruleView {
	views := make([]ruleView, 0, len(list))
	for i, rule := range list {
		name := rule.Name
		if name == "" {
			name = fmt.Sprintf("rule#%d", i)
		}
		views = append(views, ruleView{Index: i, Name: name, Pattern: rule.Pattern, Skip: rule.Skip})
	}
	return views
}

// writeRuleViews prints views as one indented JSON array.
func writeRuleViews(w io.Writer, views []ruleView) error {
	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
