package backup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mwantia/arsip/internal/app"
	"github.com/mwantia/arsip/pkg/archive"
)

func NewBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create and restore archive backups",
		Long: `Create and restore archive backups.

A backup is a single zip file holding the database and every attached
file or document folder, so it can be restored on another machine.`,
	}

	cmd.AddCommand(newBackupCreateCommand())
	cmd.AddCommand(newBackupRestoreCommand())

	return cmd
}

// DefaultName is the archive name used when no destination is given.
func DefaultName(now time.Time) string {
	return fmt.Sprintf("BACKUP_ARSIP_%s.zip", now.Format("20060102_150405"))
}

func newBackupCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [destination]",
		Short: "Write a backup of the database and all attachments",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			destination := DefaultName(time.Now())
			if len(args) > 0 {
				destination = args[0]
			}

			a, err := app.Load()
			if err != nil {
				return err
			}

			return a.Run(cmd.Context(), func(ctx context.Context) error {
				archiver, err := a.Backup(ctx)
				if err != nil {
					return err
				}

				result, err := archiver.Create(ctx, destination)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s (%s, %d attachments, %d missing) in %s\n",
					result.FilePath,
					humanize.Bytes(uint64(result.SizeBytes)),
					result.ItemCount,
					result.SkippedCount,
					result.Duration.Round(time.Millisecond))
				return nil
			})
		},
	}

	return cmd
}

func newBackupRestoreCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <archive>",
		Short: "Replace all current data with the contents of a backup",
		Long: `Replace all current data with the contents of a backup.

The database is overwritten and every attachment is moved into the
upload folders of this installation. Close every other program using
the archive first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmed := yes
			if !confirmed {
				var err error
				confirmed, err = confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
					fmt.Sprintf("Restoring %s replaces ALL current data. Continue? [y/N] ", args[0]))
				if err != nil {
					return err
				}
			}
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "Restore cancelled")
				return nil
			}

			a, err := app.Load()
			if err != nil {
				return err
			}

			return a.Run(cmd.Context(), func(ctx context.Context) error {
				archiver, err := a.Backup(ctx)
				if err != nil {
					return err
				}

				result, err := archiver.Restore(ctx, args[0], archive.RestoreOptions{
					Confirmed: confirmed,
					Roots:     a.Settings().Roots(),
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Restored %d attachments (%d entries ignored) in %s\n",
					len(result.Relocated), result.IgnoredCount, result.Duration.Round(time.Millisecond))
				if result.RestartRequired {
					fmt.Fprintln(cmd.OutOrStdout(), "Restart the application to load the restored data.")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
