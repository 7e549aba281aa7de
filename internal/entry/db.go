package entry

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"carfest-ticketing/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetTicketByCode looks a ticket up by its code, or by the derived QR
// payload when the scanner sends the raw QR contents.
func (d *DB) GetTicketByCode(ctx context.Context, code string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("ticket_code = ?", code).
		WhereOr("qr_payload = ?", code).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// MarkScanned flips the ticket PENDING -> SCANNED in one conditional
// update. The affected-row count decides the winner when two scans of
// the same code race; the loser sees false and reports ALREADY_USED.
func (d *DB) MarkScanned(ctx context.Context, ticketCode, location string, at time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("scan_status = ?", models.ScanStatusScanned).
		Set("scanned_at = ?", at).
		Set("entry_location = ?", location).
		Where("ticket_code = ?", ticketCode).
		Where("scan_status = ?", models.ScanStatusPending).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// AppendEntryLog writes one audit row for a verification attempt.
func (d *DB) AppendEntryLog(ctx context.Context, log models.EntryLog) error {
	_, err := d.Bun.NewInsert().Model(&log).Exec(ctx)
	return err
}

// ListEntryLogs returns the audit trail, newest first.
func (d *DB) ListEntryLogs(ctx context.Context, limit int) ([]models.EntryLog, error) {
	var logs []models.EntryLog
	q := d.Bun.NewSelect().
		Model(&logs).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(ctx)
	return logs, err
}
