package records

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	rec "github.com/mwantia/arsip/internal/records"
	"github.com/mwantia/arsip/pkg/db/models"
	"github.com/mwantia/arsip/pkg/db/store"
)

func NewLettersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "letters",
		Aliases: []string{"surat"},
		Short:   "Manage incoming and outgoing letters",
	}

	cmd.AddCommand(newLettersAddCommand())
	cmd.AddCommand(newLettersEditCommand())
	cmd.AddCommand(newLettersListCommand())
	cmd.AddCommand(newLettersRemoveCommand())

	return cmd
}

func letterCategory(value string) (models.Category, error) {
	category, ok := models.ParseCategory(value)
	if !ok || !category.IsLetter() {
		return "", fmt.Errorf("%w: '%s' (use masuk or keluar)", rec.ErrInvalidCategory, value)
	}
	return category, nil
}

func newLettersAddCommand() *cobra.Command {
	var category string
	var letter rec.Letter

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Archive a scanned letter",
		Long: `Archive a scanned letter.

The file is copied into the folder configured for the category. A subject
picked together with its reference code ("Undangan - 005") is stored
without the code.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := letterCategory(category)
			if err != nil {
				return err
			}
			letter.Category = c
			letter.SourceFile = args[0]

			return withService(cmd, func(ctx context.Context, svc *rec.Service) error {
				record, err := svc.AddLetter(ctx, letter)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Archived letter %d as %s\n", record.ID, record.Attachment())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "letter category (masuk, keluar)")
	cmd.Flags().StringVarP(&letter.Number, "number", "n", "", "letter number")
	cmd.Flags().StringVarP(&letter.Subject, "subject", "s", "", "subject, optionally followed by ' - CODE'")
	cmd.Flags().StringVar(&letter.Counterparty, "from", "", "sender (masuk) or recipient (keluar)")
	cmd.Flags().StringVar(&letter.Date, "date", "", "date received or sent (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&letter.LetterDate, "letter-date", "", "date printed on the letter (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&letter.Note, "note", "", "free text note")

	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("number")

	return cmd
}

func newLettersEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an archived letter",
		Long: `Change an archived letter.

Only the given flags are changed. A new --file is copied in next to the
previous attachment, which is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			patch := rec.LetterPatch{}
			for name, target := range map[string]**string{
				"number":      &patch.Number,
				"subject":     &patch.Subject,
				"from":        &patch.Counterparty,
				"date":        &patch.Date,
				"letter-date": &patch.LetterDate,
				"note":        &patch.Note,
				"file":        &patch.SourceFile,
			} {
				if cmd.Flags().Changed(name) {
					value, _ := cmd.Flags().GetString(name)
					*target = &value
				}
			}

			return withService(cmd, func(ctx context.Context, svc *rec.Service) error {
				record, err := svc.EditLetter(ctx, id, patch)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated letter %d\n", record.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringP("number", "n", "", "letter number")
	cmd.Flags().StringP("subject", "s", "", "subject, optionally followed by ' - CODE'")
	cmd.Flags().String("from", "", "sender (masuk) or recipient (keluar)")
	cmd.Flags().String("date", "", "date received or sent (YYYY-MM-DD)")
	cmd.Flags().String("letter-date", "", "date printed on the letter (YYYY-MM-DD)")
	cmd.Flags().String("note", "", "free text note")
	cmd.Flags().String("file", "", "replacement scan")

	return cmd
}

func newLettersListCommand() *cobra.Command {
	var category string
	var filter store.RecordFilter

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List archived letters, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var categories []models.Category
			if category != "" {
				c, err := letterCategory(category)
				if err != nil {
					return err
				}
				categories = []models.Category{c}
			} else {
				categories = []models.Category{models.CategoryIncoming, models.CategoryOutgoing}
			}

			return withService(cmd, func(ctx context.Context, svc *rec.Service) error {
				var all []models.Record
				for _, c := range categories {
					filter.Category = c
					list, err := svc.List(ctx, filter)
					if err != nil {
						return err
					}
					all = append(all, list...)
				}
				sort.SliceStable(all, func(i, j int) bool {
					return all[i].ID > all[j].ID
				})
				return printRecords(cmd.OutOrStdout(), all)
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only list this category (masuk, keluar)")
	cmd.Flags().StringVarP(&filter.Keyword, "search", "q", "", "match subject, number or sender/recipient")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of letters per category")

	return cmd
}

func newLettersRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete letters and their scans",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeRecords(cmd, args)
		},
	}

	return cmd
}

func removeRecords(cmd *cobra.Command, args []string) error {
	ids := make([]uint, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	return withService(cmd, func(ctx context.Context, svc *rec.Service) error {
		for _, id := range ids {
			if err := svc.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted record %d\n", id)
		}
		return nil
	})
}
