package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"traitnote/internal/diagfmt"
	"traitnote/internal/driver"
)

var renderCmd = &cobra.Command{
	Use:   "render [flags] <world.toml> <Trait>",
	Short: "Render the diagnostic a failed trait obligation would produce",
	Long: `Evaluate a trait's directive against a concrete instantiation and print
the custom message and label, or the generic fallback when no directive
applies`,
	Args: cobra.ExactArgs(2),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("self", "", "type standing in for Self (required)")
	renderCmd.Flags().StringArray("arg", nil, "bind a trait parameter, as Param=Type (repeatable)")
	renderCmd.Flags().StringArray("option", nil, "context option, as name or name=value (repeatable)")
	_ = renderCmd.MarkFlagRequired("self")
}

func runRender(cmd *cobra.Command, args []string) error {
	path, trait := args[0], args[1]

	self, err := cmd.Flags().GetString("self")
	if err != nil {
		return fmt.Errorf("failed to get self flag: %w", err)
	}
	argPairs, err := cmd.Flags().GetStringArray("arg")
	if err != nil {
		return fmt.Errorf("failed to get arg flag: %w", err)
	}
	optionPairs, err := cmd.Flags().GetStringArray("option")
	if err != nil {
		return fmt.Errorf("failed to get option flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	req := driver.RenderRequest{
		Trait: trait,
		Self:  self,
		Args:  make(map[string]string, len(argPairs)),
	}
	for _, pair := range argPairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" || value == "" {
			return fmt.Errorf("malformed --arg %q, expected Param=Type", pair)
		}
		req.Args[name] = value
	}
	for _, pair := range optionPairs {
		name, value, ok := strings.Cut(pair, "=")
		if name == "" {
			return fmt.Errorf("malformed --option %q", pair)
		}
		if ok {
			req.Options = req.Options.SetValue(name, value)
		} else {
			req.Options = req.Options.Set(name)
		}
	}

	out, res, err := driver.Render(cmd.Context(), path, req, driver.Options{MaxDiagnostics: maxDiagnostics})
	if res != nil && res.HasErrors() && !quiet {
		color, cerr := useColor(cmd)
		if cerr != nil {
			return cerr
		}
		diagfmt.Pretty(os.Stderr, res.Bag, res.FS, diagfmt.PrettyOpts{
			Color:     color,
			Context:   2,
			ShowNotes: true,
		})
	}
	if err != nil {
		return err
	}

	message := out.Fallback
	if out.Note.Message != nil {
		message = *out.Note.Message
	}
	fmt.Fprintf(os.Stdout, "error: %s\n", message)
	if out.Note.Label != nil {
		fmt.Fprintf(os.Stdout, "label: %s\n", *out.Note.Label)
	}
	return nil
}
