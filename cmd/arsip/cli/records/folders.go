package records

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mwantia/arsip/internal/app"
	rec "github.com/mwantia/arsip/internal/records"
	"github.com/mwantia/arsip/pkg/db/models"
)

func NewFoldersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Show or change where attachments are stored",
	}

	cmd.AddCommand(newFoldersGetCommand())
	cmd.AddCommand(newFoldersSetCommand())

	return cmd
}

func parseCategory(value string) (models.Category, error) {
	category, ok := models.ParseCategory(value)
	if !ok {
		return "", fmt.Errorf("%w: '%s' (use masuk, keluar or dokumen)", rec.ErrInvalidCategory, value)
	}
	return category, nil
}

func newFoldersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [category]",
		Short: "Print the folder of one or every category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories := models.Categories
			if len(args) > 0 {
				c, err := parseCategory(args[0])
				if err != nil {
					return err
				}
				categories = []models.Category{c}
			}

			a, err := app.Load()
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "CATEGORY\tFOLDER")
			for _, c := range categories {
				fmt.Fprintf(tw, "%s\t%s\n", c, a.Settings().FolderPath(c))
			}
			fmt.Fprintf(tw, "uploads\t%s\n", a.Settings().UploadRoot())
			return tw.Flush()
		},
	}
}

func newFoldersSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <path>",
		Short: "Store new letters or documents of a category in path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCategory(args[0])
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}

			a, err := app.Load()
			if err != nil {
				return err
			}
			if err := a.Settings().SetFolderPath(c, path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Folder for %s set to %s\n", c, path)
			return nil
		},
	}
}
