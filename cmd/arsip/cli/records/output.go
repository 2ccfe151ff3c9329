package records

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/mwantia/arsip/pkg/db/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid record id '%s'", s)
	}
	return uint(id), nil
}

func printRecords(w io.Writer, list []models.Record) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tCATEGORY\tDATE\tNUMBER\tSUBJECT\tFROM/TO\tFILE")
	for _, r := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Category, r.Date, r.Number, r.Subject, r.Counterparty, r.Attachment())
	}
	return tw.Flush()
}
