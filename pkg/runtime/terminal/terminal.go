package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd-tools/databook/pkg/runtime/terminal/commands"
	"github.com/dd-tools/databook/pkg/services/config"
)

// CLI represents the command-line interface
type CLI struct {
	settings *config.Settings
	output   io.Writer
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Settings *config.Settings
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		settings: opts.Settings,
		output:   opts.Output,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "databook",
		Short: "FEC analysis and due-diligence databook tool",
	}

	cmd.AddCommand(commands.NewAnalyzeCmd(cli.settings, cli.output))
	cmd.AddCommand(commands.NewMetricsCmd(cli.output))

	return cmd
}
