package records

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	rec "github.com/mwantia/arsip/internal/records"
	"github.com/mwantia/arsip/pkg/db/models"
	"github.com/mwantia/arsip/pkg/db/store"
)

func NewDocsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"dokumen"},
		Short:   "Manage document folders",
	}

	cmd.AddCommand(newDocsAddCommand())
	cmd.AddCommand(newDocsListCommand())
	cmd.AddCommand(newDocsRemoveCommand())

	return cmd
}

func newDocsAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title> <file>...",
		Short: "Store files as one document folder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *rec.Service) error {
				record, err := svc.AddDocumentGroup(ctx, args[0], args[1:])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %d files as document %d in %s\n", len(args)-1, record.ID, record.Attachment())
				return nil
			})
		},
	}

	return cmd
}

func newDocsListCommand() *cobra.Command {
	filter := store.RecordFilter{Category: models.CategoryDocument}

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List document folders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *rec.Service) error {
				list, err := svc.List(ctx, filter)
				if err != nil {
					return err
				}
				return printRecords(cmd.OutOrStdout(), list)
			})
		},
	}

	cmd.Flags().StringVarP(&filter.Keyword, "search", "q", "", "match the title")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of documents")

	return cmd
}

func newDocsRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete document folders and their files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeRecords(cmd, args)
		},
	}

	return cmd
}
