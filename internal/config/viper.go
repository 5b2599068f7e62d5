package config

import (
	"fmt"
	"sort"
	"strings"

	"fjacquet/gradefill/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. GRADEFILL_LOG_LEVEL.
const EnvPrefix = "GRADEFILL"

// Band maps a score range to a teacher comment. Max is inclusive; Min is
// inclusive unless MinExclusive is set.
type Band struct {
	Min          float64 `mapstructure:"min" yaml:"min"`
	Max          float64 `mapstructure:"max" yaml:"max"`
	MinExclusive bool    `mapstructure:"min_exclusive" yaml:"min_exclusive"`
	Text         string  `mapstructure:"text" yaml:"text"`
}

// Config is the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Grades struct {
		// Backend selects the PDF reader: "pdf" (native) or "pdftotext".
		Backend      string  `mapstructure:"backend" yaml:"backend"`
		RowTolerance float64 `mapstructure:"row_tolerance" yaml:"row_tolerance"`
		CellGap      float64 `mapstructure:"cell_gap" yaml:"cell_gap"`
		Sheet        string  `mapstructure:"sheet" yaml:"sheet"`
		Keywords     struct {
			StudentID string `mapstructure:"student_id" yaml:"student_id"`
			Name      string `mapstructure:"name" yaml:"name"`
			Grade     string `mapstructure:"grade" yaml:"grade"`
		} `mapstructure:"keywords" yaml:"keywords"`
	} `mapstructure:"grades" yaml:"grades"`

	Template struct {
		GradeMarker    string `mapstructure:"grade_marker" yaml:"grade_marker"`
		GradeFormat    string `mapstructure:"grade_format" yaml:"grade_format"`
		SignatureLabel string `mapstructure:"signature_label" yaml:"signature_label"`
		Hint           string `mapstructure:"hint" yaml:"hint"`
		DateBlank      string `mapstructure:"date_blank" yaml:"date_blank"`
	} `mapstructure:"template" yaml:"template"`

	Signature struct {
		WidthInches float64 `mapstructure:"width_inches" yaml:"width_inches"`
	} `mapstructure:"signature" yaml:"signature"`

	Comments struct {
		Bands []Band `mapstructure:"bands" yaml:"bands"`
	} `mapstructure:"comments" yaml:"comments"`

	Matching struct {
		Fuzzy      bool     `mapstructure:"fuzzy" yaml:"fuzzy"`
		Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	} `mapstructure:"matching" yaml:"matching"`

	Conversion struct {
		Binary         string `mapstructure:"binary" yaml:"binary"`
		Attempts       uint   `mapstructure:"attempts" yaml:"attempts"`
		DelaySeconds   int    `mapstructure:"delay_seconds" yaml:"delay_seconds"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	} `mapstructure:"conversion" yaml:"conversion"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // never serialized
	} `mapstructure:"ai" yaml:"ai"`

	Report struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"report" yaml:"report"`
}

// InitializeConfig builds the configuration from, in increasing priority:
// defaults, the config file, GRADEFILL_* environment variables. When
// configFile is empty the file is searched as config.yaml in
// $HOME/.gradefill, .gradefill and the working directory.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.gradefill")
		v.AddConfigPath(".gradefill")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// The Gemini key keeps its conventional unprefixed name.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	sort.SliceStable(config.Comments.Bands, func(i, j int) bool {
		return config.Comments.Bands[i].Min < config.Comments.Bands[j].Min
	})

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("grades.backend", "pdf")
	v.SetDefault("grades.row_tolerance", 3.0)
	v.SetDefault("grades.cell_gap", 8.0)
	v.SetDefault("grades.sheet", "")
	v.SetDefault("grades.keywords.student_id", "学号")
	v.SetDefault("grades.keywords.name", "姓名")
	v.SetDefault("grades.keywords.grade", "实习报告")

	v.SetDefault("template.grade_marker", "综合成绩评定（百分制或五级制）：        ")
	v.SetDefault("template.grade_format", "综合成绩评定（百分制或五级制）：  %s  ")
	v.SetDefault("template.signature_label", "指导教师手写签名：")
	v.SetDefault("template.hint", "（学生是否完成实习计划，实习任务完成的水平、效益，研究和解决实践问题的意识和能力，工作态度、综合素质、品德纪律等情况）")
	v.SetDefault("template.date_blank", "年   月   日")

	v.SetDefault("signature.width_inches", 1.5)

	v.SetDefault("comments.bands", []map[string]interface{}{
		{"min": 60, "max": 70, "min_exclusive": false, "text": "实习报告内容尚可，但需要进一步提高对专业知识的理解。"},
		{"min": 70, "max": 85, "min_exclusive": true, "text": "实习报告较为完整，体现了较好的专业理解能力。"},
		{"min": 85, "max": 100, "min_exclusive": true, "text": "实习报告内容优秀，体现了较强的专业素养和实践能力。"},
	})

	v.SetDefault("matching.fuzzy", false)
	v.SetDefault("matching.extensions", []string{".doc", ".docx"})

	v.SetDefault("conversion.binary", "soffice")
	v.SetDefault("conversion.attempts", 3)
	v.SetDefault("conversion.delay_seconds", 2)
	v.SetDefault("conversion.timeout_seconds", 120)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)

	v.SetDefault("report.delimiter", ",")
}

// Validate checks the configuration again, after command-line overrides.
func (c *Config) Validate() error {
	return validateConfig(c)
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Grades.Backend != "pdf" && config.Grades.Backend != "pdftotext" {
		return fmt.Errorf("invalid grades.backend: %s (must be 'pdf' or 'pdftotext')", config.Grades.Backend)
	}

	if config.Grades.Keywords.StudentID == "" || config.Grades.Keywords.Name == "" || config.Grades.Keywords.Grade == "" {
		return fmt.Errorf("grades.keywords must define student_id, name and grade")
	}

	if config.Grades.RowTolerance <= 0 || config.Grades.CellGap <= 0 {
		return fmt.Errorf("grades.row_tolerance and grades.cell_gap must be positive")
	}

	if config.Template.GradeMarker == "" || config.Template.SignatureLabel == "" {
		return fmt.Errorf("template.grade_marker and template.signature_label are required")
	}

	if strings.Count(config.Template.GradeFormat, "%s") != 1 {
		return fmt.Errorf("template.grade_format must contain exactly one %%s, got: %q", config.Template.GradeFormat)
	}

	if config.Signature.WidthInches <= 0 || config.Signature.WidthInches > 10 {
		return fmt.Errorf("signature.width_inches must be between 0 and 10, got: %g", config.Signature.WidthInches)
	}

	for i, b := range config.Comments.Bands {
		if b.Max < b.Min {
			return fmt.Errorf("comments.bands[%d]: max %g is lower than min %g", i, b.Max, b.Min)
		}
	}

	if len(config.Matching.Extensions) == 0 {
		return fmt.Errorf("matching.extensions must not be empty")
	}

	if config.Conversion.Attempts < 1 || config.Conversion.Attempts > 10 {
		return fmt.Errorf("conversion.attempts must be between 1 and 10, got: %d", config.Conversion.Attempts)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	if len([]rune(config.Report.Delimiter)) != 1 {
		return fmt.Errorf("report delimiter must be a single character, got: %s", config.Report.Delimiter)
	}

	return nil
}

// NewLogger builds the application logger from the log settings.
func NewLogger(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(config.Log.Level, config.Log.Format)
}

// ToYAML renders the effective configuration. The API key is never included.
func (c *Config) ToYAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}
