// Package cli wires the export, merge and import pipelines
// into a command line tool. It is a reference surface, the pipelines
// are normally embedded into a service.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forgeport/forgeport/internal/pkg/filesystem"
	"github.com/forgeport/forgeport/internal/pkg/filesystem/aferofs"
	"github.com/forgeport/forgeport/internal/pkg/log"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

const description = `
Forgeport

Serialize a project's object graph into a portable export tree,
merge partial export shards and restore the tree into another tenant.
`

type rootCommand struct {
	cmd    *cobra.Command
	stdout io.Writer
	stderr io.Writer
	logger log.Logger
	ctx    context.Context
}

// NewRootCommand creates parent of all sub-commands.
func NewRootCommand(stdout io.Writer, stderr io.Writer) *rootCommand {
	root := &rootCommand{
		stdout: stdout,
		stderr: stderr,
		logger: log.NewNopLogger(),
		ctx:    context.Background(),
	}

	root.cmd = &cobra.Command{
		Use:           "forgeport",
		Short:         description,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.cmd.Help()
		},
	}
	root.cmd.SetOut(stdout)
	root.cmd.SetErr(stderr)

	flags := root.cmd.PersistentFlags()
	flags.SortFlags = true
	flags.BoolP("help", "h", false, "print help for command")
	flags.BoolP("verbose", "v", false, "print details")
	flags.StringP("working-dir", "d", "", "use other working directory")

	// The logger depends on the verbose flag, so it is created after parsing
	root.cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		root.logger = log.NewCliLogger(root.stdout, root.stderr, verbose)
		if ctx := cmd.Context(); ctx != nil {
			root.ctx = ctx
		}
		return nil
	}

	root.cmd.AddCommand(
		exportCommand(root),
		mergeCommand(root),
		importCommand(root),
	)
	return root
}

// Execute runs the command, it returns the process exit code.
func (root *rootCommand) Execute() int {
	if err := root.cmd.Execute(); err != nil {
		_, _ = io.WriteString(root.stderr, "Error: "+errors.Format(err)+"\n")
		return 1
	}
	return 0
}

// workingDir resolves the working directory flag, the process working
// directory is the default.
func (root *rootCommand) workingDir(cmd *cobra.Command) (string, error) {
	if dir, _ := cmd.Flags().GetString("working-dir"); dir != "" {
		return filepath.Abs(dir)
	}
	return os.Getwd()
}

// localFs creates a local filesystem rooted at the path,
// relative paths are resolved against the working directory.
func (root *rootCommand) localFs(cmd *cobra.Command, path string) (filesystem.Fs, error) {
	workingDir, err := root.workingDir(cmd)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workingDir, path)
	}
	return aferofs.NewLocalFs(path)
}
