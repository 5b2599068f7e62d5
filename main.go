package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/gradefill/cmd/common"
	configcmd "fjacquet/gradefill/cmd/config"
	"fjacquet/gradefill/cmd/convert"
	"fjacquet/gradefill/cmd/extract"
	"fjacquet/gradefill/cmd/fill"
	"fjacquet/gradefill/cmd/inspect"
	"fjacquet/gradefill/cmd/root"
	"fjacquet/gradefill/internal/config"
)

func init() {
	// Environment first, so GEMINI_API_KEY and GRADEFILL_* are visible to viper
	config.LoadEnv()

	root.Init()

	root.Cmd.AddCommand(fill.Cmd)
	root.Cmd.AddCommand(extract.Cmd)
	root.Cmd.AddCommand(convert.Cmd)
	root.Cmd.AddCommand(inspect.Cmd)
	root.Cmd.AddCommand(configcmd.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.Cmd.ExecuteContext(ctx)
	root.Close()
	if err != nil {
		// the summary already lists the failed reports
		if !errors.Is(err, common.ErrReportsFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}
