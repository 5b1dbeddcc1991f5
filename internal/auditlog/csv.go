package auditlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// csvHeader is the fixed export column set. The file is consumed by
// spreadsheet tools, so the layout is stable across versions.
var csvHeader = []string{
	"Timestamp",
	"Username",
	"Action",
	"EntityType",
	"EntityId",
	"EntityDisplayName",
	"Result",
	"ErrorMessage",
}

// csvTimeFormat renders export timestamps for human consumption.
const csvTimeFormat = "2006-01-02 15:04:05"

// ExportCSV writes records in the optional date range to w as UTF-8 CSV,
// newest first. Unlike Log and Purge, export is user-initiated, so failures
// propagate to the caller.
func (t *Trail) ExportCSV(ctx context.Context, w io.Writer, start, end *time.Time) error {
	records, err := t.Query(ctx, Filter{Start: start, End: end, Limit: exportLimit})
	if err != nil {
		return fmt.Errorf("auditlog: export query failed: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("auditlog: export write failed: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Timestamp.Format(csvTimeFormat),
			rec.Username,
			rec.Action,
			rec.EntityType,
			rec.EntityID,
			rec.EntityName,
			rec.Result,
			rec.ErrorMessage,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("auditlog: export write failed: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("auditlog: export flush failed: %w", err)
	}
	return nil
}
