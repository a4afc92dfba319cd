package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/sld/internal/config"
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/ui"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show and edit prefix rules",
	Long: `Prefix rules map the first character of a link alias to a link type, an emoji
and optional styling.

Rules come from four contributors, merged in order: the built-in defaults,
the global config file, the vault's .sld.yaml and --rule flags. A later rule
with the same prefix replaces the earlier one in its original position.`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the merged rule set",
	Long: `Lists the rules in effect after merging every contributor, with the
contributor each rule came from.

Examples:
  sld rules list
  sld rules list --rule prefix=%,emoji=📚,type=book
  sld rules list --json`,
	Args: cobra.NoArgs,
	RunE: runRulesList,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a rule",
	Long: `Adds a rule to the global config, or to the vault's .sld.yaml with --vault.
A rule with the same prefix in that file is replaced.

Examples:
  sld rules add --prefix % --emoji 📚 --type book
  sld rules add --prefix @ --emoji 🧑 --type person --color "#89b4fa" --vault`,
	Args: cobra.NoArgs,
	RunE: runRulesAdd,
}

var rulesRemoveCmd = &cobra.Command{
	Use:   "remove <prefix>",
	Short: "Remove a rule by prefix",
	Long: `Removes the rule with the given prefix from the global config, or from the
vault's .sld.yaml with --vault. Built-in rules cannot be removed; set
use_defaults = false in the global config instead.

Examples:
  sld rules remove %
  sld rules remove @ --vault`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesRemove,
}

var errRuleNotFound = errors.New("rule not found")

var (
	rulesVault   bool
	rulesNewRule rules.PrefixRule
)

type ruleOutput struct {
	rules.PrefixRule
	Source string `json:"source"`
}

type rulesListResult struct {
	Contributors []string     `json:"contributors"`
	Rules        []ruleOutput `json:"rules"`
}

func init() {
	f := rulesAddCmd.Flags()
	f.StringVar(&rulesNewRule.Prefix, "prefix", "", "Prefix typed at the start of an alias")
	f.StringVar(&rulesNewRule.Emoji, "emoji", "", "Replacement for the prefix")
	f.StringVar(&rulesNewRule.LinkType, "type", "", "Link type written to matched links")
	f.StringVar(&rulesNewRule.Color, "color", "", "Foreground color")
	f.StringVar(&rulesNewRule.Background, "background", "", "Background color")
	f.Float64Var(&rulesNewRule.BackgroundAlpha, "alpha", 0, "Background opacity from 0 to 1")
	f.BoolVar(&rulesNewRule.Underline, "underline", false, "Underline matched links")
	_ = rulesAddCmd.MarkFlagRequired("prefix")

	for _, c := range []*cobra.Command{rulesAddCmd, rulesRemoveCmd} {
		c.Flags().BoolVar(&rulesVault, "vault", false, "Edit the vault's .sld.yaml instead of the global config")
	}

	rulesCmd.AddCommand(rulesListCmd, rulesAddCmd, rulesRemoveCmd)
	rootCmd.AddCommand(rulesCmd)
}

// ruleSources returns the merged rules with the contributor that supplied
// each one.
func ruleSources(vc *config.VaultConfig) ([]ruleOutput, []string) {
	r := rules.NewResolver()
	config.Contributions(r, cfg, vc)
	if len(extraRules) > 0 {
		r.Contribute(config.ContribFlags, extraRules)
	}

	source := make(map[string]string)
	if cfg.DefaultsEnabled() {
		for _, rule := range rules.Defaults() {
			source[rule.Prefix] = config.ContribDefaults
		}
	}
	for _, rule := range cfg.Rules {
		source[rule.Prefix] = config.ContribGlobal
	}
	if vc != nil {
		for _, rule := range vc.Rules {
			source[rule.Prefix] = config.ContribVault
		}
	}
	for _, rule := range extraRules {
		source[rule.Prefix] = config.ContribFlags
	}

	merged := r.Resolve().Rules()
	out := make([]ruleOutput, 0, len(merged))
	for _, rule := range merged {
		out = append(out, ruleOutput{PrefixRule: rule, Source: source[rule.Prefix]})
	}
	return out, r.Contributors()
}

func runRulesList(cmd *cobra.Command, args []string) error {
	vc, err := loadVaultConfig()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "Fix .sld.yaml and try again")
	}
	list, contributors := ruleSources(vc)

	if isJSONOutput() {
		outputSuccess(rulesListResult{Contributors: contributors, Rules: list}, &Meta{Count: len(list)})
		return nil
	}

	if len(list) == 0 {
		fmt.Println(ui.Hint("No rules. Add one with 'sld rules add --prefix @ --emoji 👤 --type person'"))
		return nil
	}

	rendered, err := ui.RenderMarkdown(rulesMarkdown(list), ui.NewDisplayContext().TermWidth)
	if err != nil {
		return handleError(ErrInternal, err, "")
	}
	fmt.Print(rendered)
	return nil
}

func rulesMarkdown(list []ruleOutput) string {
	var b strings.Builder
	b.WriteString("| prefix | emoji | type | style | source |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, r := range list {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			mdCell(r.Prefix), mdCell(r.Emoji), mdCell(r.LinkType), mdCell(ruleStyle(r.PrefixRule)), r.Source)
	}
	return b.String()
}

func ruleStyle(r rules.PrefixRule) string {
	var parts []string
	if r.Color != "" {
		parts = append(parts, "color "+r.Color)
	}
	if r.Background != "" {
		bg := "background " + r.Background
		if r.BackgroundAlpha > 0 {
			bg += fmt.Sprintf(" @ %.2g", r.BackgroundAlpha)
		}
		parts = append(parts, bg)
	}
	if r.Underline {
		parts = append(parts, "underline")
	}
	return strings.Join(parts, ", ")
}

func mdCell(s string) string {
	if s == "" {
		return "-"
	}
	return "`" + strings.ReplaceAll(s, "|", "\\|") + "`"
}

// upsertRule replaces the rule with the same prefix or appends r.
func upsertRule(list []rules.PrefixRule, r rules.PrefixRule) ([]rules.PrefixRule, bool) {
	for i := range list {
		if list[i].Prefix == r.Prefix {
			list[i] = r
			return list, true
		}
	}
	return append(list, r), false
}

func removeRule(list []rules.PrefixRule, prefix string) ([]rules.PrefixRule, bool) {
	for i := range list {
		if list[i].Prefix == prefix {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}

// editRules loads the target file's rule list, lets edit change it and
// saves it back.
func editRules(edit func([]rules.PrefixRule) ([]rules.PrefixRule, error)) (string, error) {
	if rulesVault {
		vc, err := loadVaultConfig()
		if err != nil {
			return "", err
		}
		if vc.Rules, err = edit(vc.Rules); err != nil {
			return "", err
		}
		if err := config.SaveVaultConfig(getVaultPath(), vc); err != nil {
			return "", err
		}
		return displayPath(filepath.Join(getVaultPath(), config.VaultConfigFile)), nil
	}

	var err error
	if cfg.Rules, err = edit(cfg.Rules); err != nil {
		return "", err
	}
	if err := config.SaveTo(resolvedConfigPath, cfg); err != nil {
		return "", err
	}
	return resolvedConfigPath, nil
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	r := rulesNewRule
	if err := r.Validate(); err != nil {
		return handleError(ErrRuleInvalid, err, "")
	}

	var updated bool
	path, err := editRules(func(list []rules.PrefixRule) ([]rules.PrefixRule, error) {
		var out []rules.PrefixRule
		out, updated = upsertRule(list, r)
		return out, nil
	})
	if err != nil {
		return handleError(ErrFileWriteError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{"rule": r, "file": path, "updated": updated}, nil)
		return nil
	}
	verb := "Added"
	if updated {
		verb = "Updated"
	}
	fmt.Println(ui.Successf("%s rule %s in %s", verb, formatRule(r), ui.FilePath(path)))
	return nil
}

func runRulesRemove(cmd *cobra.Command, args []string) error {
	prefix := args[0]
	path, err := editRules(func(list []rules.PrefixRule) ([]rules.PrefixRule, error) {
		out, ok := removeRule(list, prefix)
		if !ok {
			return nil, errRuleNotFound
		}
		return out, nil
	})
	if errors.Is(err, errRuleNotFound) {
		where := "the global config"
		if rulesVault {
			where = config.VaultConfigFile
		}
		return handleErrorMsg(ErrRuleNotFound, fmt.Sprintf("no rule with prefix %q in %s", prefix, where), "Run 'sld rules list' to see where each rule comes from")
	}
	if err != nil {
		return handleError(ErrFileWriteError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{"prefix": prefix, "file": path}, nil)
		return nil
	}
	fmt.Println(ui.Successf("Removed rule %q from %s", prefix, ui.FilePath(path)))
	return nil
}
