package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"traitnote/internal/diag"
	"traitnote/internal/diagfmt"
	"traitnote/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <world.toml|directory>",
	Short: "Validate the directives of one or more world files",
	Long:  `Parse every trait directive in a world file (or all *.toml worlds within a directory) and report template, condition, and attribute problems`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("disk-cache", false, "reuse cached outcomes for unchanged world files")
	checkCmd.Flags().Bool("ui", false, "show interactive progress for directory checks")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	enableDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	withUI, err := cmd.Flags().GetBool("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	opts := driver.Options{MaxDiagnostics: maxDiagnostics}
	if enableDiskCache {
		cache, err := driver.OpenDiskCache("traitnote")
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
		opts.Cache = cache
	}

	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	var results []*driver.Result
	if st.IsDir() {
		jobs, err := cmd.Flags().GetInt("jobs")
		if err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
		if withUI && isTerminal(os.Stdout) {
			results, err = runCheckDirWithUI(cmd.Context(), path, opts, jobs)
		} else {
			results, err = driver.CheckDir(cmd.Context(), path, opts, jobs, nil)
		}
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}
	} else {
		res, err := driver.Check(cmd.Context(), path, opts)
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}
		results = []*driver.Result{res}
	}

	color, err := useColor(cmd)
	if err != nil {
		return err
	}
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	exit := 0
	for _, r := range results {
		if r.HasErrors() {
			exit = 1
			break
		}
	}

	switch format {
	case "pretty":
		prettyOpts := diagfmt.PrettyOpts{
			Color:     color,
			Context:   2,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		}
		for idx, r := range results {
			if idx > 0 {
				fmt.Fprintln(os.Stdout)
			}
			fmt.Fprintf(os.Stdout, "== %s ==\n", r.Path)
			diagfmt.Pretty(os.Stdout, r.Bag, r.FS, prettyOpts)
			if !quiet {
				printOutcomes(r)
			}
		}
	case "short":
		for _, r := range results {
			output := diag.FormatShortDiagnostics(r.Bag.Items(), r.FS, withNotes)
			if output != "" {
				fmt.Fprintln(os.Stdout, output)
			}
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		}
		output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		for _, r := range results {
			output[r.Path] = diagfmt.BuildDiagnosticsOutput(r.Bag, r.FS, jsonOpts)
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if exit != 0 {
		// Suppress cobra usage output; diagnostics are already printed.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}

func printOutcomes(r *driver.Result) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case driver.StatusOK:
			rules := "rules"
			if o.Rules == 1 {
				rules = "rule"
			}
			fmt.Fprintf(os.Stdout, "  %s: ok (%d %s)\n", o.Trait, o.Rules, rules)
		default:
			fmt.Fprintf(os.Stdout, "  %s: %s\n", o.Trait, o.Status)
		}
	}
	if r.CacheHit {
		fmt.Fprintln(os.Stdout, "  (cached)")
	}
}
