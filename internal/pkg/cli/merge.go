package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgeport/forgeport/internal/pkg/export/merge"
	"github.com/forgeport/forgeport/internal/pkg/filesystem"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
	"github.com/forgeport/forgeport/internal/pkg/validator"
)

type mergeOptions struct {
	ProjectPath string   `json:"projectPath" validate:"required"`
	OutputDir   string   `json:"outputDir" validate:"required"`
	Shards      []string `json:"shards" validate:"required,min=1"`
}

func mergeCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge partial export trees into one tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := mergeOptions{}
			opts.ProjectPath, _ = cmd.Flags().GetString("project-path")
			opts.OutputDir, _ = cmd.Flags().GetString("output-dir")
			opts.Shards, _ = cmd.Flags().GetStringSlice("shards")
			if err := validator.Validate(root.ctx, &opts); err != nil {
				return errors.PrefixError(err, "invalid options")
			}
			return root.runMerge(cmd, opts)
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().String("project-path", "", "importable path of the project")
	cmd.Flags().String("output-dir", "", "directory for the merged tree")
	cmd.Flags().StringSlice("shards", nil, "directories with the partial trees")
	return cmd
}

func (root *rootCommand) runMerge(cmd *cobra.Command, opts mergeOptions) error {
	outputFs, err := root.localFs(cmd, opts.OutputDir)
	if err != nil {
		return err
	}

	fetcher := &localShardFetcher{root: root, cmd: cmd}
	merger := merge.NewMerger(root.logger, fetcher, outputFs, opts.ProjectPath)
	if !merger.Save(root.ctx, opts.Shards) {
		errs := errors.NewMultiError()
		for _, msg := range merger.Errors() {
			errs.Append(errors.New(msg))
		}
		return errs.ErrorOrNil()
	}

	_, _ = fmt.Fprintln(root.stdout, "Done!")
	return nil
}

// localShardFetcher resolves a shard id as a local directory,
// a remote fetcher would download and extract an upload instead.
type localShardFetcher struct {
	root *rootCommand
	cmd  *cobra.Command
}

func (f *localShardFetcher) Fetch(ctx context.Context, shardID string) (filesystem.Fs, error) {
	return f.root.localFs(f.cmd, shardID)
}
