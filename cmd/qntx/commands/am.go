package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/qntx-core/am"
	"github.com/teranos/qntx-core/display"
	"github.com/teranos/qntx-core/errors"
	"github.com/teranos/qntx-core/sym"
)

func newAmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "am",
		Short: sym.AM + " Manage qntx configuration",
		Long: sym.AM + ` am - Manage qntx configuration ("I am")

Configuration sources (later overrides earlier):
1. Default values
2. System config (/etc/qntx/config.toml)
3. User config (~/.qntx/am.toml)
4. Project config (nearest am.toml from the working directory up)
5. Environment variables (QNTX_* prefix, also read from .env)

Examples:
  qntx am show                        # Show current configuration
  qntx am show --format json          # Show configuration as JSON
  qntx am get classify.review_threshold
  qntx am where                       # Show where each setting came from
  qntx am init                        # Write defaults to ~/.qntx/am.toml`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE:  runAmShow,
	}
	show.Flags().String("format", am.FormatTOML, "Output format: toml, json, yaml")

	get := &cobra.Command{
		Use:   "get KEY",
		Short: "Get a configuration value (dot notation, e.g. classify.workers)",
		Args:  cobra.ExactArgs(1),
		RunE:  runAmGet,
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate current configuration",
		RunE:  runAmValidate,
	}

	where := &cobra.Command{
		Use:   "where",
		Short: "Show where each setting came from",
		RunE:  runAmWhere,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to ~/.qntx/am.toml",
		RunE:  runAmInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file (the old one is kept as .back1)")
	initCmd.Flags().String("path", "", "Write here instead of ~/.qntx/am.toml")

	cmd.AddCommand(show, get, validate, where, initCmd)
	return cmd
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg := appFrom(cmd).cfg

	format, _ := cmd.Flags().GetString("format")
	if display.ShouldOutputJSON(cmd) {
		format = am.FormatJSON
	}

	data, err := am.Render(cfg, format)
	if err != nil {
		return err
	}
	if format != am.FormatJSON {
		fmt.Fprintln(cmd.OutOrStdout(), "# qntx configuration")
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runAmGet(cmd *cobra.Command, args []string) error {
	value, ok := am.Lookup(args[0])
	if !ok {
		return errors.NewNotFoundError("configuration key %q", args[0])
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), map[string]interface{}{"key": args[0], "value": value})
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	if err := appFrom(cmd).cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	display.Success(cmd.OutOrStdout(), "Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return errors.Wrap(err, "failed to get config introspection")
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), intro)
	}

	w := cmd.OutOrStdout()
	if intro.ConfigFile != "" {
		display.Info(w, "Highest-precedence file: %s", intro.ConfigFile)
	}

	rows := make([][]string, 0, len(intro.Settings))
	for _, s := range intro.Settings {
		value := fmt.Sprintf("%v", s.Value)
		if len(value) > 50 {
			value = value[:47] + "..."
		}
		rows = append(rows, []string{s.Key, value, string(s.Source), s.SourcePath})
	}
	return display.Table(w, []string{"KEY", "VALUE", "SOURCE", "FROM"}, rows)
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		path = am.UserConfigPath()
	}
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return errors.WithHint(
			errors.Newf("%s already exists", path),
			"use --force to overwrite; the current file is kept as .back1")
	}

	if err := am.Save(am.Default(), path); err != nil {
		return err
	}
	display.Success(cmd.OutOrStdout(), "Wrote default configuration to %s", path)
	return nil
}
