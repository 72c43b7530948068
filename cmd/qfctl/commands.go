package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"questionflow/internal/app"
	"questionflow/internal/config"
	"questionflow/internal/editor"
	"questionflow/internal/logging"
	"questionflow/internal/model"
	"questionflow/internal/service"
)

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "qfctl",
		Short:         "questionflow operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("QUESTIONFLOW_CONFIG"), "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	logger := func(cmd *cobra.Command) *slog.Logger {
		return logging.New(cmd.ErrOrStderr(), config.LogConfig{Level: logLevel})
	}

	cmd.AddCommand(seedCmd(&configPath, logger))
	cmd.AddCommand(reconcileCmd(logger))
	cmd.AddCommand(validateCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "qfctl version %s\n", version)
		},
	})
	return cmd
}

func seedCmd(configPath *string, logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	var hostUsername string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store a sample questionnaire in the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if hostUsername == "" {
				hostUsername = cfg.Auth.HostUsername
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			repo, closeRepo, err := app.OpenRepository(ctx, cfg, logger(cmd))
			if err != nil {
				return err
			}
			defer closeRepo()

			q := sampleQuestionnaire(service.HostIDFor(hostUsername))
			id, err := repo.Create(ctx, q)
			if err != nil {
				return fmt.Errorf("seed questionnaire: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded questionnaire %s for host %s (%s)\n", id, q.HostID, hostUsername)
			return nil
		},
	}
	cmd.Flags().StringVar(&hostUsername, "host", "", "Login name that should own the questionnaire (default: configured host)")
	return cmd
}

// reconcileOutput is what `qfctl reconcile` prints
type reconcileOutput struct {
	Source    editor.Source        `json:"source"`
	Ambiguous bool                 `json:"ambiguous"`
	Options   []model.OptionRecord `json:"options"`
}

func reconcileCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	var (
		file string
		mode string
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Print the canonical options of a question node",
		Long: `Reads a question node's data (as stored in the graph) and prints the
canonical option list the editor would seed a draft with.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data model.QuestionNodeData
			if err := readJSON(cmd, file, &data); err != nil {
				return err
			}
			rm := editor.ReconcileMode(mode)
			if rm != editor.ModeCompat && rm != editor.ModeStrict {
				return fmt.Errorf("unknown reconcile mode %q", mode)
			}

			rec := editor.NewReconciler(rm, editor.NewSlogReporter(logger(cmd))).
				Reconcile(cmd.Context(), file, data.Options, data.OptionsData)
			return writeJSON(cmd.OutOrStdout(), reconcileOutput{
				Source:    rec.Source,
				Ambiguous: rec.Ambiguous,
				Options:   rec.Options,
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Node data JSON file, - for stdin")
	cmd.Flags().StringVar(&mode, "mode", string(editor.ModeCompat), "Reconcile mode (compat, strict)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func validateCmd() *cobra.Command {
	var (
		file   string
		preset string
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run commit validation on a draft",
		Long: `Reads a draft (questionText, questionType, isRequired, options) and prints
the payload a commit would save, or the validation error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var state model.QuestionDraft
			if err := readJSON(cmd, file, &state); err != nil {
				return err
			}
			policy, err := editor.PolicyByName(preset)
			if err != nil {
				return err
			}

			payload, err := editor.Commit(editor.Resume(state, policy))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), payload)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Draft JSON file, - for stdin")
	cmd.Flags().StringVar(&preset, "policy", "default", "Editor policy preset (default, modal, inline)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readJSON(cmd *cobra.Command, path string, target interface{}) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(target); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
