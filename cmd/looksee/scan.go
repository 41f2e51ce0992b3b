package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kingrea/looksee/internal/config"
	"github.com/kingrea/looksee/internal/logbook"
	"github.com/kingrea/looksee/internal/logging"
	"github.com/kingrea/looksee/internal/report"
	"github.com/kingrea/looksee/internal/tui"
	"github.com/kingrea/looksee/registry"
	"github.com/kingrea/looksee/scanner"
)

// runTUI is swapped out in tests.
var runTUI = tui.Run

func newScanCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <target>",
		Short: "Discover the exported objects under a dotted package path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, v, args[0])
		},
	}
	flags := cmd.Flags()
	flags.StringSlice("path", nil, "extra search root, tried before configured roots (repeatable)")
	flags.StringSlice("kind", nil, "only report objects of these kinds: const, var, func, type")
	flags.String("name-prefix", "", "only report names with this prefix")
	flags.String("embeds", "", "only report struct types embedding this type name")
	flags.Bool("strict", false, "abort on the first import or discovery failure")
	flags.String("format", "", "output format: text, json or yaml")
	flags.Bool("tui", false, "browse the results interactively")
	for _, name := range []string{"path", "kind", "name-prefix", "embeds", "strict", "format", "tui"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}

func runScan(cmd *cobra.Command, v *viper.Viper, target string) error {
	cfg, err := config.NewConfig(v.GetString("project"))
	if err != nil {
		return err
	}
	cfg.AddSearchPaths(v.GetStringSlice("path")...)

	format := v.GetString("format")
	if format == "" {
		format = cfg.OutputFormat()
	}
	outFormat, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	pred, err := buildPredicate(v.GetStringSlice("kind"), v.GetString("name-prefix"), v.GetString("embeds"))
	if err != nil {
		return err
	}

	level := v.GetString("log-level")
	if level == "" {
		level = cfg.LogLevel()
	}
	logger, err := logging.New(logging.Options{
		Prefix: "looksee",
		Level:  level,
		File:   cfg.LogFile(),
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	base := scanner.LogHooks(logger.Logger)
	if v.GetBool("strict") {
		base = scanner.StrictHooks(logger.Logger)
	}
	recorder := scanner.NewRecorder(base)
	reg := registry.New()
	sc := scanner.New(
		scanner.WithPredicate(pred),
		scanner.WithCallback(reg.Callback()),
		scanner.WithHooks(recorder.Hooks()),
		scanner.WithLogger(logger.Logger),
		scanner.WithSearchPaths(cfg.SearchPaths()...),
		scanner.WithMarkerName(cfg.MarkerName()),
	)

	_, scanErr := sc.Scan(target)
	diagnostics := recorder.Diagnostics()

	journal, err := logbook.New(cfg.JournalPath())
	if err != nil {
		logger.Warn("scan journal unavailable", "err", err)
	} else if err := journal.Record(target, reg.Len(), diagnostics, scanErr); err != nil {
		logger.Warn("failed to write scan journal", "err", err)
	}

	if scanErr != nil {
		if errors.Is(scanErr, scanner.ErrUnresolved) {
			logger.Error("target not found", "target", target, "err", scanErr)
		} else {
			logger.Error("scan aborted", "target", target, "err", scanErr)
		}
		return &ExitError{Code: 1, Err: scanErr}
	}

	res := report.NewResult(target, reg.Entries(), diagnostics)
	if v.GetBool("tui") {
		var opts []tui.AppOption
		if journal != nil {
			opts = append(opts, tui.WithLogbook(journal))
		}
		if err := runTUI(res, opts...); err != nil {
			return fmt.Errorf("run tui: %w", err)
		}
		return nil
	}
	return report.Write(cmd.OutOrStdout(), outFormat, res)
}

func buildPredicate(kinds []string, prefix, embedded string) (scanner.Predicate, error) {
	var preds []scanner.Predicate
	if len(kinds) > 0 {
		parsed := make([]scanner.Kind, 0, len(kinds))
		for _, k := range kinds {
			kind, err := scanner.ParseKind(k)
			if err != nil {
				return nil, err
			}
			parsed = append(parsed, kind)
		}
		preds = append(preds, scanner.KindIs(parsed...))
	}
	if prefix != "" {
		preds = append(preds, scanner.NamePrefix(prefix))
	}
	if embedded != "" {
		preds = append(preds, scanner.Embeds(embedded))
	}
	if len(preds) == 0 {
		return scanner.MatchAll, nil
	}
	return scanner.All(preds...), nil
}
