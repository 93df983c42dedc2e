package notifications

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	"go.uber.org/multierr"
)

// snapshotsFromNotifications encodes the newest-first slice into durable rows.
// Position preserves ordering so a restore reproduces the in-memory layout.
func snapshotsFromNotifications(items []Notification) ([]models.NotificationSnapshot, error) {
	rows := make([]models.NotificationSnapshot, 0, len(items))
	var errs error
	for i, item := range items {
		body, err := json.Marshal(item)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("encode notification %s: %w", item.ID, err))
			continue
		}
		rows = append(rows, models.NotificationSnapshot{
			ID:            item.ID,
			UserID:        item.UserID,
			Position:      i,
			SchemaVersion: models.SnapshotSchemaVersion,
			Body:          string(body),
			CreatedAt:     item.Timestamp,
		})
	}
	return rows, errs
}

// notificationsFromSnapshots decodes persisted rows back into the newest-first
// in-memory layout. Rows with an unknown schema version or an undecodable body
// are skipped so one bad row never poisons the whole restore.
func notificationsFromSnapshots(rows []models.NotificationSnapshot) ([]Notification, error) {
	sorted := append([]models.NotificationSnapshot(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	items := make([]Notification, 0, len(sorted))
	var errs error
	for _, row := range sorted {
		if row.SchemaVersion != models.SnapshotSchemaVersion {
			errs = multierr.Append(errs, fmt.Errorf("snapshot %s: unsupported schema version %d", row.ID, row.SchemaVersion))
			continue
		}
		var item Notification
		if err := json.Unmarshal([]byte(row.Body), &item); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("decode snapshot %s: %w", row.ID, err))
			continue
		}
		items = append(items, item)
	}
	return items, errs
}
