package cmd

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-ats/internal/logger"
	"github.com/spigell/resume-ats/internal/parser"
	"github.com/spigell/resume-ats/internal/resume"
)

// ParseResult pairs a parsed profile with the file it came from.
type ParseResult struct {
	Source  string          `json:"source" yaml:"source"`
	Profile *resume.Profile `json:"profile" yaml:"profile"`
}

var parseCmd = &cobra.Command{
	Use:   "parse FILE...",
	Short: "Parse plain-text resumes into scored profiles",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		runParse(args)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().IntP("workers", "w", 0, "number of resumes parsed concurrently (default from config)")
	viper.BindPFlag("workers", parseCmd.Flags().Lookup("workers"))
}

func runParse(paths []string) {
	ctx := context.Background()

	log, config := setup()

	p, err := newParser(ctx, config, log)
	if err != nil {
		log.Fatal("creating a parser", zap.Error(err))
	}

	results, err := parseFiles(ctx, p, paths, config.Workers, log)
	if err != nil {
		log.Fatal("parsing resumes", zap.Error(err))
	}

	var out any = results
	if len(results) == 1 {
		out = results[0].Profile
	}
	if err := render(os.Stdout, viper.GetString("output"), out); err != nil {
		log.Fatal("rendering profiles", zap.Error(err))
	}
}

// parseFiles parses every file with at most workers running at once. Results keep the order of paths.
func parseFiles(ctx context.Context, p *parser.Parser, paths []string, workers int, log *zap.Logger) ([]ParseResult, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]ParseResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			fileLog := logger.WithSource(log, path)

			text, err := readResume(path)
			if err != nil {
				return err
			}

			profile, err := p.Parse(ctx, text)
			if err != nil {
				fileLog.Error("parsing resume failed", zap.Error(err))
				return err
			}

			fileLog.Info("resume parsed",
				zap.String("name", profile.Name),
				zap.Int("skills", len(profile.Skills)),
				zap.Float64("score", profile.Score),
			)
			results[i] = ParseResult{Source: path, Profile: profile}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// setup builds the logger and reads the config. Failures are fatal.
func setup() (*zap.Logger, *Config) {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	l.Debug("starting",
		zap.String("app", app),
		zap.String("version", version),
		zap.String("extractor", config.Extractor.Provider),
		zap.Int("workers", config.Workers),
	)
	return l, config
}
