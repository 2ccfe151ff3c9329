package records

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	rec "github.com/mwantia/arsip/internal/records"
	"github.com/mwantia/arsip/pkg/db/models"
)

func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count archived records per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *rec.Service) error {
				counts, err := svc.Stats(ctx)
				if err != nil {
					return err
				}

				var total int64
				tw := newTable(cmd.OutOrStdout())
				for _, c := range models.Categories {
					fmt.Fprintf(tw, "%s\t%s\n", c, humanize.Comma(counts[c]))
					total += counts[c]
				}
				fmt.Fprintf(tw, "total\t%s\n", humanize.Comma(total))
				return tw.Flush()
			})
		},
	}
}
