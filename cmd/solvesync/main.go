// Command solvesync extracts an accepted solution from a saved judge page
// and optionally pushes it to GitHub, without running the server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/yangwenmai/solvesync/internal/config"
	"github.com/yangwenmai/solvesync/internal/engine"
	"github.com/yangwenmai/solvesync/internal/extract"
	"github.com/yangwenmai/solvesync/internal/github"
	"github.com/yangwenmai/solvesync/internal/model"
	"github.com/yangwenmai/solvesync/internal/notify"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(config.Load()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// options holds the flags shared by preview and push.
type options struct {
	url      string
	token    string
	owner    string
	repo     string
	language string
	apiURL   string
	dryRun   bool
	asJSON   bool
}

func (o options) settings() model.Settings {
	return model.Settings{
		Token:           o.token,
		RepoOwner:       o.owner,
		RepoName:        o.repo,
		DefaultLanguage: o.language,
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "solvesync",
		Short:        "Sync accepted judge submissions to a GitHub repository",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.url, "url", "", "page URL the HTML was saved from (required)")
	root.PersistentFlags().StringVar(&opts.language, "language", cfg.DefaultLanguage, "language used when none is found on the page")

	root.AddCommand(newPreviewCmd(opts), newPushCmd(cfg, opts))
	return root
}

func newPreviewCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <file.html|->",
		Short: "Print the file that would be pushed for a saved page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := loadSubmission(cmd.InOrStdin(), args[0], opts.url)
			if err != nil {
				return err
			}
			pipeline := engine.NewPipeline(engine.StaticSettings(opts.settings()),
				&engine.ExtractStep{Extractor: extract.New()},
				&engine.NormalizeStep{},
			)
			sc, err := pipeline.Execute(cmd.Context(), sub)
			if err != nil {
				return err
			}
			return printPreview(cmd.OutOrStdout(), sc, opts.asJSON)
		},
	}
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print artifact and file as JSON")
	return cmd
}

func newPushCmd(cfg config.Config, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <file.html|->",
		Short: "Extract the solution from a saved page and push it to GitHub",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := loadSubmission(cmd.InOrStdin(), args[0], opts.url)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))
			var syncer engine.Syncer = github.NewClient(
				github.WithBaseURL(opts.apiURL),
				github.WithTimeout(cfg.HTTPTimeout),
				github.WithLogger(logger),
			)
			if opts.dryRun {
				syncer = &engine.DryRunSyncer{Logger: logger}
			}

			pipeline := engine.NewPipeline(engine.StaticSettings(opts.settings()),
				&engine.ExtractStep{Extractor: extract.New()},
				&engine.NormalizeStep{},
				&engine.SyncStep{Syncer: syncer},
			)
			result, err := pipeline.Run(cmd.Context(), sub)
			if err != nil {
				notify.Log{Logger: logger}.Notify(cmd.Context(), err.Error(), model.SeverityError)
				return err
			}
			notify.Log{Logger: logger}.Notify(cmd.Context(), "Successfully pushed solution to GitHub: "+result.Path, model.SeverityInfo)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&opts.token, "token", cfg.GitHubToken, "GitHub token (defaults to GITHUB_TOKEN)")
	cmd.Flags().StringVar(&opts.owner, "owner", cfg.GitHubOwner, "repository owner (defaults to GITHUB_REPO_OWNER)")
	cmd.Flags().StringVar(&opts.repo, "repo", cfg.GitHubRepo, "repository name (defaults to GITHUB_REPO_NAME)")
	cmd.Flags().StringVar(&opts.apiURL, "api-url", cfg.GitHubAPIURL, "GitHub API base URL")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", cfg.DryRun, "log the write instead of calling GitHub")
	return cmd
}

// loadSubmission reads a saved page from path, or from stdin when path is "-".
func loadSubmission(stdin io.Reader, path, url string) (*model.Submission, error) {
	if url == "" {
		return nil, fmt.Errorf("--url is required")
	}
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	sub := model.NewSubmission("cli", url, model.TriggerManual, string(b))
	return &sub, nil
}

func printPreview(w io.Writer, sc *engine.StepContext, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Artifact *model.SubmissionArtifact `json:"artifact"`
			File     *model.NormalizedFile     `json:"file"`
		}{sc.Artifact, sc.File})
	}
	a, f := sc.Artifact, sc.File
	fmt.Fprintf(w, "path:     %s\n", f.Path)
	fmt.Fprintf(w, "message:  %s\n", f.CommitMessage)
	fmt.Fprintf(w, "title:    %s (%s)\n", a.Title, a.TitleSource)
	fmt.Fprintf(w, "language: %s (%s)\n", a.Language, a.LanguageSource)
	fmt.Fprintf(w, "code:     %s\n\n", a.CodeSource)
	_, err := fmt.Fprintln(w, f.Content)
	return err
}
