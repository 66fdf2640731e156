package config

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	GitHub   GitHubConfig
	Review   ReviewConfig
	Workers  WorkersConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port         string `env:"PORT, default=8080"`
	Mode         string `env:"GIN_MODE, default=release"`
	ReadTimeout  int    `env:"READ_TIMEOUT, default=15"`
	WriteTimeout int    `env:"WRITE_TIMEOUT, default=15"`
}

type DatabaseConfig struct {
	Path string `env:"DB_PATH, default=./reviewgate.db"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL, default=info"`
	Format string `env:"LOG_FORMAT, default=json"`
}

type GitHubConfig struct {
	Token string `env:"GITHUB_TOKEN"`
	// APIURL points the client at a GitHub Enterprise instance when set.
	APIURL string `env:"GITHUB_API_URL"`
}

// ReviewConfig controls how checklist reviews are evaluated and reported.
type ReviewConfig struct {
	DefaultMinimum       int    `env:"REVIEW_DEFAULT_MINIMUM, default=1"`
	StatusContext        string `env:"REVIEW_STATUS_CONTEXT, default=code-review/checklist"`
	TargetURL            string `env:"REVIEW_TARGET_URL"`
	RequireCollaborators bool   `env:"REVIEW_REQUIRE_COLLABORATORS, default=false"`
	AssignReviewers      bool   `env:"REVIEW_ASSIGN_REVIEWERS, default=false"`
}

type WorkersConfig struct {
	PullRequest  int           `env:"PULL_REQUEST_WORKERS, default=2"`
	IssueComment int           `env:"ISSUE_COMMENT_WORKERS, default=1"`
	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL, default=2s"`
}

type AdminConfig struct {
	Token string `env:"ADMIN_TOKEN"`
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := Process(context.Background(), envconfig.OsLookuper())
	if err != nil {
		return err
	}

	AppConfig = cfg
	return nil
}

// Process decodes configuration from the given lookuper, applying defaults.
func Process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}

	if cfg.Review.DefaultMinimum < 1 {
		cfg.Review.DefaultMinimum = 1
	}
	if cfg.Workers.PullRequest < 0 {
		cfg.Workers.PullRequest = 0
	}
	if cfg.Workers.IssueComment < 0 {
		cfg.Workers.IssueComment = 0
	}

	return &cfg, nil
}
