package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgeport/forgeport/internal/pkg/builder"
	"github.com/forgeport/forgeport/internal/pkg/factory"
	"github.com/forgeport/forgeport/internal/pkg/model"
	"github.com/forgeport/forgeport/internal/pkg/restore"
	"github.com/forgeport/forgeport/internal/pkg/store/memory"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
	"github.com/forgeport/forgeport/internal/pkg/validator"
)

type importOptions struct {
	FilePath    string `json:"filePath" validate:"required"`
	ProjectPath string `json:"projectPath" validate:"required"`
	NamespaceID int64  `json:"namespaceId" validate:"required"`
	Username    string `json:"username" validate:"required"`
	UserMap     string `json:"userMap" validate:"required"`
	Visibility  string `json:"visibility"`
}

func importCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore an export tree into the destination tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := importOptions{}
			opts.FilePath, _ = cmd.Flags().GetString("file-path")
			opts.ProjectPath, _ = cmd.Flags().GetString("project-path")
			opts.NamespaceID, _ = cmd.Flags().GetInt64("namespace-id")
			opts.Username, _ = cmd.Flags().GetString("username")
			opts.UserMap, _ = cmd.Flags().GetString("user-map")
			opts.Visibility, _ = cmd.Flags().GetString("group-visibility")
			if err := validator.Validate(root.ctx, &opts); err != nil {
				return errors.PrefixError(err, "invalid options")
			}
			return root.runImport(cmd, opts)
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().String("file-path", "", "directory with the export tree")
	cmd.Flags().String("project-path", "", "path of the new project")
	cmd.Flags().Int64("namespace-id", 0, "id of the destination namespace")
	cmd.Flags().String("username", "", "username of the importing user")
	cmd.Flags().String("user-map", "", "path to a JSON file mapping usernames to destination user ids")
	cmd.Flags().String("group-visibility", "public", "visibility of the destination group: private, internal or public")
	return cmd
}

func (root *rootCommand) runImport(cmd *cobra.Command, opts importOptions) error {
	workingFs, err := root.localFs(cmd, ".")
	if err != nil {
		return err
	}
	treeFs, err := root.localFs(cmd, opts.FilePath)
	if err != nil {
		return err
	}

	members := model.StaticMemberMap{}
	if err := workingFs.ReadJSONFileTo(opts.UserMap, "user map", &members); err != nil {
		return err
	}

	importerID, found := members.UserID(opts.Username, "")
	if !found {
		return errors.Errorf(`username "%s" is not present in the user map`, opts.Username)
	}

	groupVisibility, err := parseVisibility(opts.Visibility)
	if err != nil {
		return err
	}

	schema := model.DefaultSchema()
	objectStore := memory.New()
	failures := memory.NewFailureSink()
	objectFactory := factory.New(schema, builder.New(objectStore))

	restorer := restore.NewRestorer(
		root.logger,
		treeFs,
		schema,
		objectFactory,
		objectStore,
		failures,
		members,
		opts.ProjectPath,
		restore.Destination{
			ProjectPath:     opts.ProjectPath,
			NamespaceID:     opts.NamespaceID,
			ImporterUserID:  importerID,
			GroupVisibility: groupVisibility,
		},
	)

	if !restorer.Restore(root.ctx) {
		return errors.Errorf(`import of project "%s" failed, correlation id "%s"`, opts.ProjectPath, restorer.CorrelationID())
	}

	if failed := restorer.FailedCount(); failed > 0 {
		_, _ = fmt.Fprintf(root.stdout, "Done with %d failed records, correlation id %s\n", failed, restorer.CorrelationID())
		return nil
	}

	_, _ = fmt.Fprintln(root.stdout, "Done!")
	return nil
}

func parseVisibility(value string) (model.Visibility, error) {
	switch value {
	case "private", "":
		return model.VisibilityPrivate, nil
	case "internal":
		return model.VisibilityInternal, nil
	case "public":
		return model.VisibilityPublic, nil
	default:
		return 0, errors.Errorf(`unexpected visibility "%s"`, value)
	}
}
