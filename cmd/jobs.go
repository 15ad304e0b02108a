package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/filtering"
	"github.com/spigell/resume-ats/internal/jobs"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [ID]",
	Short: "List the job corpus or show a single job",
	Args:  cobra.MaximumNArgs(1),
	PreRun: func(cmd *cobra.Command, _ []string) {
		bindJobsFlags(cmd)
	},
	Run: func(_ *cobra.Command, args []string) {
		runJobs(args)
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)

	jobsCmd.Flags().String("corpus", "", "job corpus file (csv, json or yaml)")
	jobsCmd.Flags().StringSlice("category", nil, "only list jobs of these categories")
}

func runJobs(args []string) {
	logger, config := setup()

	if len(args) == 1 {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			logger.Fatal("job id must be a number", zap.String("id", args[0]))
		}

		corpus, err := jobs.LoadCorpus(config.Jobs.CorpusFile)
		if err != nil {
			logger.Fatal("loading job corpus", zap.Error(err))
		}

		posting := corpus.FindByID(id)
		if posting == nil {
			logger.Fatal("job not found", zap.Int("id", id))
		}
		if err := render(os.Stdout, viper.GetString("output"), posting); err != nil {
			logger.Fatal("rendering job", zap.Error(err))
		}
		return
	}

	// Only the category allow-list applies when listing; reviewed jobs stay visible.
	listing := *config.Jobs
	listing.ExcludeFile = ""

	steps := filtering.Default()
	filtering.DisableByName(steps, "without_skills", "listing shows every job")

	corpus, err := loadFilteredCorpus(context.Background(), &listing, steps, logger)
	if err != nil {
		logger.Fatal("loading job corpus", zap.Error(err))
	}

	if err := writeJobsTable(os.Stdout, corpus); err != nil {
		logger.Fatal("listing jobs", zap.Error(err))
	}
}

func writeJobsTable(w io.Writer, corpus *jobs.Corpus) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tTITLE\tSKILLS")
	for _, p := range corpus.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.ID, p.Category, p.Title, len(p.Skills))
	}
	return tw.Flush()
}
