package records

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mwantia/arsip/internal/app"
	rec "github.com/mwantia/arsip/internal/records"
)

// withService loads the application and runs fn with the record service.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *rec.Service) error) error {
	a, err := app.Load()
	if err != nil {
		return err
	}

	return a.Run(cmd.Context(), func(ctx context.Context) error {
		svc, err := a.Records(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, svc)
	})
}
