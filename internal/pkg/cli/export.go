package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgeport/forgeport/internal/pkg/export"
	"github.com/forgeport/forgeport/internal/pkg/model"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
	"github.com/forgeport/forgeport/internal/pkg/validator"
)

type exportOptions struct {
	Document    string   `json:"document" validate:"required"`
	ProjectPath string   `json:"projectPath" validate:"required"`
	OutputDir   string   `json:"outputDir" validate:"required"`
	Relations   []string `json:"relations"`
	Description string   `json:"description"`
}

func exportCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a project document into an export tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := exportOptions{}
			opts.Document, _ = cmd.Flags().GetString("document")
			opts.ProjectPath, _ = cmd.Flags().GetString("project-path")
			opts.OutputDir, _ = cmd.Flags().GetString("output-dir")
			opts.Relations, _ = cmd.Flags().GetStringSlice("relations")
			opts.Description, _ = cmd.Flags().GetString("description")
			if err := validator.Validate(root.ctx, &opts); err != nil {
				return errors.PrefixError(err, "invalid options")
			}
			return root.runExport(cmd, opts)
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().String("document", "", "path to the project JSON document")
	cmd.Flags().String("project-path", "", "importable path of the project")
	cmd.Flags().String("output-dir", "", "directory for the export tree")
	cmd.Flags().StringSlice("relations", nil, "export only the listed relations")
	cmd.Flags().String("description", "", "override the project description")
	return cmd
}

func (root *rootCommand) runExport(cmd *cobra.Command, opts exportOptions) error {
	workingFs, err := root.localFs(cmd, ".")
	if err != nil {
		return err
	}
	outputFs, err := root.localFs(cmd, opts.OutputDir)
	if err != nil {
		return err
	}

	document, err := workingFs.ReadJSONFile(opts.Document, "project document")
	if err != nil {
		return err
	}

	saverOpts := make([]export.Option, 0)
	if len(opts.Relations) > 0 {
		saverOpts = append(saverOpts, export.WithRelations(opts.Relations...))
	}
	if opts.Description != "" {
		saverOpts = append(saverOpts, export.WithOverrides(map[string]any{"description": opts.Description}))
	}

	source := export.NewDocumentSource(document.Content)
	saver := export.NewSaver(root.logger, outputFs, model.DefaultSchema(), source, opts.ProjectPath, saverOpts...)
	if !saver.Save(root.ctx) {
		return saver.Err()
	}

	_, _ = fmt.Fprintln(root.stdout, "Done!")
	return nil
}
