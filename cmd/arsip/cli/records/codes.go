package records

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	rec "github.com/mwantia/arsip/internal/records"
)

func NewCodesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "Manage letter reference codes",
	}

	cmd.AddCommand(newCodesAddCommand())
	cmd.AddCommand(newCodesEditCommand())
	cmd.AddCommand(newCodesListCommand())
	cmd.AddCommand(newCodesRemoveCommand())

	return cmd
}

func newCodesAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <code> <description>",
		Short: "Add a reference code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *rec.Service) error {
				code, err := svc.AddCode(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added code %s (%d)\n", code.Code, code.ID)
				return nil
			})
		},
	}
}

func newCodesEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <code> <description>",
		Short: "Change a reference code",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withService(cmd, func(ctx context.Context, svc *rec.Service) error {
				if _, err := svc.UpdateCode(ctx, id, args[1], args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated code %d\n", id)
				return nil
			})
		},
	}
}

func newCodesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List reference codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *rec.Service) error {
				codes, err := svc.ListCodes(ctx)
				if err != nil {
					return err
				}

				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tCODE\tDESCRIPTION")
				for _, c := range codes {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Code, c.Description)
				}
				return tw.Flush()
			})
		},
	}
}

func newCodesRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a reference code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withService(cmd, func(ctx context.Context, svc *rec.Service) error {
				if err := svc.DeleteCode(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted code %d\n", id)
				return nil
			})
		},
	}
}
