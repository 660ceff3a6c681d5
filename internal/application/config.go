package application

import "slices"

// DefaultCategories are the eight life-wheel categories in their default
// presentation order.
var DefaultCategories = []string{"健康", "工作", "家庭", "休閒", "情緒", "成長", "人際", "財富"}

// Config defines the complete specification for an interview and serves
// as the primary configuration entry point for the system.
// Every field can be given in YAML; the ones with an env tag can also be
// overridden from LIFEWHEEL_-prefixed environment variables.
type Config struct {
	// Version specifies the configuration schema version using semantic
	// versioning to ensure compatibility across updates.
	Version string `yaml:"version" validate:"required,semver"`
	// Categories are the items ranked in the first stage, in the order
	// they are first presented. LIFEWHEEL_CATEGORIES takes a comma
	// separated list.
	Categories []string `yaml:"categories" env:"CATEGORIES" validate:"required,min=2,max=12,unique,dive,nonblank,max=50"`
	// Prompts holds the question text shown for each comparison stage.
	Prompts PromptConfig `yaml:"prompts" envPrefix:"PROMPTS_" validate:"required"`
	// Keywords controls how free-text associations are accepted.
	Keywords KeywordConfig `yaml:"keywords" envPrefix:"KEYWORDS_"`
	// Presentation controls how pairs are shown to the respondent.
	Presentation PresentationConfig `yaml:"presentation" envPrefix:"PRESENTATION_"`
	// Budget limits how many comparisons an interview may ask.
	Budget BudgetConfig `yaml:"budget" envPrefix:"BUDGET_"`
	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
	// Log configures structured logging.
	Log LogConfig `yaml:"log" envPrefix:"LOG_"`
}

// PromptConfig holds the human-facing question for each comparison stage.
type PromptConfig struct {
	// Categories is asked while ranking categories.
	Categories string `yaml:"categories" env:"CATEGORIES" validate:"required,nonblank,max=200"`
	// Representative is asked while choosing a category's representative.
	Representative string `yaml:"representative" env:"REPRESENTATIVE" validate:"required,nonblank,max=200"`
	// Keywords is asked while ranking the representatives.
	Keywords string `yaml:"keywords" env:"KEYWORDS" validate:"required,nonblank,max=200"`
}

// KeywordConfig controls keyword normalization and rejection.
type KeywordConfig struct {
	// CaseSensitive disables Unicode case folding when comparing keywords.
	CaseSensitive bool `yaml:"case_sensitive" env:"CASE_SENSITIVE"`
	// MinDistance rejects a keyword whose Levenshtein distance to a
	// category name or an earlier keyword is at or below this value.
	// Zero disables the check.
	MinDistance int `yaml:"min_distance" env:"MIN_DISTANCE" validate:"min=0,max=5"`
	// MaxLength caps a keyword's length in runes.
	MaxLength int `yaml:"max_length" env:"MAX_LENGTH" validate:"min=1,max=100"`
}

// PresentationConfig controls pair ordering on screen.
type PresentationConfig struct {
	// SwapPositions randomizes which item is shown first.
	SwapPositions bool `yaml:"swap_positions" env:"SWAP_POSITIONS"`
	// Seed makes swapping reproducible; zero picks a time-based seed.
	Seed int64 `yaml:"seed" env:"SEED"`
}

// BudgetConfig limits the length of an interview.
type BudgetConfig struct {
	// MaxQuestions caps the number of comparison questions across all
	// stages. Zero means unlimited.
	MaxQuestions int `yaml:"max_questions" env:"MAX_QUESTIONS" validate:"min=0,max=1000"`
}

// MetricsConfig configures the Prometheus scrape endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables the server.
	Addr string `yaml:"addr" env:"ADDR" validate:"omitempty,hostname_port"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level" env:"LEVEL" validate:"omitempty,oneof=debug info warn error"`
	// File, when set, sends logs to a rotated file instead of stderr.
	File string `yaml:"file" env:"FILE" validate:"omitempty,max=4096"`
	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `yaml:"max_size_mb" env:"MAX_SIZE_MB" validate:"omitempty,min=1,max=1024"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `yaml:"max_backups" env:"MAX_BACKUPS" validate:"omitempty,min=0,max=100"`
}

// DefaultConfig returns the configuration used when no file is given: the
// eight life-wheel categories with the original interview prompts.
func DefaultConfig() Config {
	return Config{
		Version:    "1.0.0",
		Categories: slices.Clone(DefaultCategories),
		Prompts: PromptConfig{
			Categories:     "哪一個比較重要？",
			Representative: "哪一個感受更深刻？",
			Keywords:       "哪一個對你的生命更重要？",
		},
		Keywords: KeywordConfig{
			MaxLength: 20,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}
