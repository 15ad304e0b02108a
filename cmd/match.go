package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/filtering"
	"github.com/spigell/resume-ats/internal/jobs"
	"github.com/spigell/resume-ats/internal/resume"
)

const (
	PromptShowMatch           = "Show match details"
	PromptMatchesToFile       = "Dump matches to file"
	PromptAppendToExcludeFile = "Append all matches to exclude file"
	PromptExit                = "Exit"
	PromptBack                = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowMatch, PromptMatchesToFile, PromptAppendToExcludeFile, PromptExit},
}

// MatchReport is the output of the match command.
type MatchReport struct {
	Profile *resume.Profile `json:"profile" yaml:"profile"`
	Matches []jobs.Match    `json:"matches" yaml:"matches"`
}

var matchCmd = &cobra.Command{
	Use:   "match FILE",
	Short: "Parse a resume and rank the job corpus against its skills",
	Args:  cobra.ExactArgs(1),
	PreRun: func(cmd *cobra.Command, _ []string) {
		bindJobsFlags(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		runMatch(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("corpus", "", "job corpus file (csv, json or yaml)")
	matchCmd.Flags().IntP("limit", "l", 0, "maximum number of matches")
	matchCmd.Flags().StringSlice("category", nil, "only rank jobs of these categories")
	matchCmd.Flags().StringP("exclude-file", "e", "", "file with already reviewed jobs to exclude. Default is unset.")
	matchCmd.Flags().BoolP("interactive", "i", false, "browse the matches interactively")
}

// bindJobsFlags binds the jobs.* keys to the flags of the running command only,
// since several commands declare the same flags.
func bindJobsFlags(cmd *cobra.Command) {
	for key, flag := range map[string]string{
		"jobs.corpus-file":  "corpus",
		"jobs.limit":        "limit",
		"jobs.categories":   "category",
		"jobs.exclude-file": "exclude-file",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			viper.BindPFlag(key, f)
		}
	}
}

func runMatch(cmd *cobra.Command, path string) {
	ctx := context.Background()

	logger, config := setup()

	p, err := newParser(ctx, config, logger)
	if err != nil {
		logger.Fatal("creating a parser", zap.Error(err))
	}

	text, err := readResume(path)
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err))
	}

	profile, err := p.Parse(ctx, text)
	if err != nil {
		logger.Fatal("parsing resume", zap.Error(err))
	}

	corpus, err := loadFilteredCorpus(ctx, config.Jobs, filtering.Default(), logger)
	if err != nil {
		logger.Fatal("loading job corpus", zap.Error(err))
	}

	matches := jobs.NewMatcher(config.Jobs.Limit).Match(profile.Skills, corpus)
	logger.Info("jobs ranked",
		zap.Int("skills", len(profile.Skills)),
		zap.Int("jobs", corpus.Len()),
		zap.Int("matches", len(matches)),
	)

	interactive, _ := cmd.Flags().GetBool("interactive")
	if !interactive {
		if err := render(os.Stdout, viper.GetString("output"), MatchReport{Profile: profile, Matches: matches}); err != nil {
			logger.Fatal("rendering matches", zap.Error(err))
		}
		return
	}

	if len(matches) == 0 {
		logger.Info("exiting", zap.String("reason", "no matching jobs found"))
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, config, corpus, matches); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func loadFilteredCorpus(ctx context.Context, cfg *JobsConfig, steps []filtering.Filter, logger *zap.Logger) (*jobs.Corpus, error) {
	corpus, err := jobs.LoadCorpus(cfg.CorpusFile)
	if err != nil {
		return nil, err
	}
	logger.Info("job corpus loaded", zap.String("path", cfg.CorpusFile), zap.Int("jobs", corpus.Len()))

	return filtering.Run(ctx, &filtering.Config{
		Categories:  cfg.Categories,
		ExcludeFile: cfg.ExcludeFile,
	}, filtering.Deps{Logger: logger}, steps, corpus)
}

func handleAction(action string, logger *zap.Logger, config *Config, corpus *jobs.Corpus, matches []jobs.Match) error {
	switch action {
	case PromptShowMatch:
		return showMatches(corpus, matches)
	case PromptMatchesToFile:
		matched := matchedPostings(corpus, matches)
		file, err := matched.DumpToTmpFile()
		if err != nil {
			return err
		}
		logger.Info("matched jobs dumped", zap.String("filename", file))
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, config.Jobs.ExcludeFile, matchedPostings(corpus, matches))
	case PromptExit:
		return errExit
	}
	return nil
}

func showMatches(corpus *jobs.Corpus, matches []jobs.Match) error {
	items := make([]string, 0, len(matches)+1)
	for _, m := range matches {
		items = append(items, fmt.Sprintf("%d %s (%.2f, %d/%d skills)", m.JobID, m.JobTitle, m.MatchScore, len(m.MatchedSkills), m.TotalSkills))
	}

	for {
		matchPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := matchPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		id, err := strconv.Atoi(strings.Split(selected, " ")[0])
		if err != nil {
			return fmt.Errorf("parsing job id from %q: %w", selected, err)
		}
		posting := corpus.FindByID(id)
		if posting == nil {
			return fmt.Errorf("there is no such job id %d", id)
		}

		if err := render(os.Stdout, viper.GetString("output"), posting); err != nil {
			return err
		}
	}
}

func appendToExcludeFile(logger *zap.Logger, path string, matched *jobs.Corpus) error {
	if strings.TrimSpace(path) == "" {
		logger.Warn("exclude file is not configured", zap.String("hint", "set jobs.exclude-file or pass --exclude-file"))
		return nil
	}

	excluded, err := filtering.ReadExcludeFile(path)
	if err != nil {
		return err
	}

	excluded.Append(filtering.ToExcluded(matched, time.Now()))
	if err := excluded.ToFile(path); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", path), zap.Int("jobs", matched.Len()))
	return nil
}

func matchedPostings(corpus *jobs.Corpus, matches []jobs.Match) *jobs.Corpus {
	matched := &jobs.Corpus{Items: make([]*jobs.Posting, 0, len(matches))}
	for _, m := range matches {
		if posting := corpus.FindByID(m.JobID); posting != nil {
			matched.Items = append(matched.Items, posting)
		}
	}
	return matched
}
