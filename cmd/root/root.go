// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/gradefill/internal/config"
	"fjacquet/gradefill/internal/container"
	"fjacquet/gradefill/internal/logging"

	"github.com/spf13/cobra"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
}

var (
	// Flags holds the parsed persistent flags.
	Flags = GlobalFlags{}

	appContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "gradefill",
		Short: "Fill internship reports with grades from a grade table.",
		Long: `gradefill reads students' grades from a PDF (or XLSX/CSV) grade table,
finds each student's internship report by name in a directory, and writes the
grade, a teacher comment, a signature image and the date into the report.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initialize,
	}
)

// Init registers the persistent flags.
func Init() {
	Cmd.PersistentFlags().StringVar(&Flags.ConfigFile, "config", "", "Config file (default: config.yaml in $HOME/.gradefill, .gradefill or .)")
	Cmd.PersistentFlags().StringVar(&Flags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&Flags.LogFormat, "log-format", "", "Log format (text or json)")
}

func initialize(cmd *cobra.Command, args []string) error {
	config.LoadEnv()

	cfg, err := config.InitializeConfig(Flags.ConfigFile)
	if err != nil {
		return err
	}
	if Flags.LogLevel != "" {
		cfg.Log.Level = Flags.LogLevel
	}
	if Flags.LogFormat != "" {
		cfg.Log.Format = Flags.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	appContainer = c
	return nil
}

// Close releases the container's resources. main calls it after the command
// returns, whether or not it failed.
func Close() {
	if appContainer == nil {
		return
	}
	if err := appContainer.Close(); err != nil {
		appContainer.GetLogger().WithError(err).Warn("Failed to release resources")
	}
	appContainer = nil
}

// GetContainer returns the container built before the command ran.
func GetContainer() *container.Container {
	return appContainer
}

// SetContainer replaces the container; tests use it to inject dependencies.
func SetContainer(c *container.Container) {
	appContainer = c
}

// GetLogger returns the application logger.
func GetLogger() logging.Logger {
	if appContainer == nil {
		return logging.NewLogrusAdapter("info", "text")
	}
	return appContainer.GetLogger()
}
