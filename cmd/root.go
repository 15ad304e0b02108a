package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resume-ats"
)

type Config struct {
	Sections     map[string][]string `mapstructure:"sections"`
	Skills       *SkillsConfig       `mapstructure:"skills"`
	Extractor    *ExtractorConfig    `mapstructure:"extractor"`
	Jobs         *JobsConfig         `mapstructure:"jobs"`
	ParseTimeout time.Duration       `mapstructure:"parse-timeout"`
	Workers      int                 `mapstructure:"workers"`
}

type SkillsConfig struct {
	VocabularyFile string `mapstructure:"vocabulary-file"`
}

type ExtractorConfig struct {
	Provider   string              `mapstructure:"provider"`
	Dictionary map[string][]string `mapstructure:"dictionary"`
	Gemini     *GeminiConfig       `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type JobsConfig struct {
	CorpusFile  string   `mapstructure:"corpus-file"`
	Limit       int      `mapstructure:"limit"`
	Categories  []string `mapstructure:"categories"`
	ExcludeFile string   `mapstructure:"exclude-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-ats extracts structured profiles from resumes, scores them and ranks job postings against them",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("extractor.gemini.api-key-file", "RESUME_ATS_GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding RESUME_ATS_GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults()
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-ats.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("output", "o", "json", "output format: json or yaml")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
}

func setDefaults() {
	viper.SetDefault("skills.vocabulary-file", "data/skills/skills.csv")
	viper.SetDefault("extractor.provider", providerNone)
	viper.SetDefault("extractor.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("extractor.gemini.max-retries", 3)
	viper.SetDefault("extractor.gemini.max-log-length", 200)
	viper.SetDefault("jobs.corpus-file", "data/jobs/all_job_post.csv")
	viper.SetDefault("jobs.limit", 10)
	viper.SetDefault("parse-timeout", "10s")
	viper.SetDefault("workers", 4)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless given explicitly, defaults cover every key.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}
	if config == nil {
		config = &Config{}
	}

	config.normalize()
	return config, nil
}

// normalize fills nested sections and restores the upper-case section names viper lower-cases.
func (c *Config) normalize() {
	if c.Skills == nil {
		c.Skills = &SkillsConfig{}
	}
	if c.Extractor == nil {
		c.Extractor = &ExtractorConfig{}
	}
	if c.Extractor.Gemini == nil {
		c.Extractor.Gemini = &GeminiConfig{}
	}
	if c.Jobs == nil {
		c.Jobs = &JobsConfig{}
	}
	c.Extractor.Provider = strings.ToLower(strings.TrimSpace(c.Extractor.Provider))

	if len(c.Sections) > 0 {
		upper := make(map[string][]string, len(c.Sections))
		for name, aliases := range c.Sections {
			upper[strings.ToUpper(name)] = aliases
		}
		c.Sections = upper
	}
}
