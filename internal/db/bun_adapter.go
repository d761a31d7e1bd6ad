package db

import (
	"context"
	"database/sql"
	"os/user"
	"strings"
	"time"

	"github.com/keywarden/keywarden/internal/model"
	"github.com/uptrace/bun"
)

// SettingModel maps the `settings` table for Bun queries. The `key` column
// name is a reserved word on MySQL, so raw clauses must quote it via
// bun.Ident instead of embedding it in the SQL string.
type SettingModel struct {
	bun.BaseModel `bun:"table:settings"`
	Key           string `bun:"key,pk"`
	Value         string `bun:"value"`
	UpdatedAt     string `bun:"updated_at"`
}

// AuditLogModel maps the audit_log table.
type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_log"`
	ID            int    `bun:"id,pk,autoincrement"`
	Timestamp     string `bun:"timestamp"`
	Username      string `bun:"username"`
	Action        string `bun:"action"`
	Details       string `bun:"details"`
}

// --- Mapping helpers (centralized conversions) ---
func settingModelToModel(s SettingModel) model.Setting {
	return model.Setting{Key: s.Key, Value: s.Value, UpdatedAt: s.UpdatedAt}
}

func auditLogModelToModel(a AuditLogModel) model.AuditLogEntry {
	return model.AuditLogEntry{ID: a.ID, Timestamp: a.Timestamp, Username: a.Username, Action: a.Action, Details: a.Details}
}

// nowStamp returns the audit/settings timestamp in the canonical stored form.
// Timestamps are written by the application, not the database, so all three
// engines store and scan the same plain string.
func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// GetSettingBun retrieves the value for a settings key. A missing key is not
// an error; it returns an empty value.
func GetSettingBun(bdb *bun.DB, key string) (string, error) {
	ctx := context.Background()
	var sm SettingModel
	err := bdb.NewSelect().Model(&sm).Where("? = ?", bun.Ident("key"), key).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil // No value stored is not an error, it's a state.
		}
		return "", err
	}
	return sm.Value, nil
}

// SetSettingBun inserts or replaces a settings value using an ON CONFLICT
// upsert. This covers SQLite and Postgres; MySQL needs SetSettingMySQLBun.
func SetSettingBun(bdb *bun.DB, key, value string) error {
	ctx := context.Background()
	sm := &SettingModel{Key: key, Value: value, UpdatedAt: nowStamp()}
	_, err := bdb.NewInsert().Model(sm).
		On("CONFLICT (?) DO UPDATE", bun.Ident("key")).
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return MapDBError(err)
}

// SetSettingMySQLBun is the MySQL variant of SetSettingBun. MySQL has no
// ON CONFLICT clause and uses ON DUPLICATE KEY UPDATE with VALUES().
func SetSettingMySQLBun(bdb *bun.DB, key, value string) error {
	ctx := context.Background()
	sm := &SettingModel{Key: key, Value: value, UpdatedAt: nowStamp()}
	_, err := bdb.NewInsert().Model(sm).
		On("DUPLICATE KEY UPDATE").
		Set("value = VALUES(value)").
		Set("updated_at = VALUES(updated_at)").
		Exec(ctx)
	return MapDBError(err)
}

// DeleteSettingBun removes a settings key. Deleting a missing key is a no-op.
func DeleteSettingBun(bdb *bun.DB, key string) error {
	ctx := context.Background()
	_, err := bdb.NewDelete().Model((*SettingModel)(nil)).Where("? = ?", bun.Ident("key"), key).Exec(ctx)
	return err
}

// GetAllSettingsBun returns all settings ordered by key.
func GetAllSettingsBun(bdb *bun.DB) ([]model.Setting, error) {
	ctx := context.Background()
	var sms []SettingModel
	if err := bdb.NewSelect().Model(&sms).OrderExpr("?", bun.Ident("key")).Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Setting, 0, len(sms))
	for _, s := range sms {
		out = append(out, settingModelToModel(s))
	}
	return out, nil
}

// GetAllAuditLogEntriesBun retrieves audit log entries, most recent first.
// Timestamps have second resolution, so ties fall back to insert order.
func GetAllAuditLogEntriesBun(bdb *bun.DB) ([]model.AuditLogEntry, error) {
	ctx := context.Background()
	var am []AuditLogModel
	if err := bdb.NewSelect().Model(&am).OrderExpr("timestamp DESC, id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.AuditLogEntry, 0, len(am))
	for _, a := range am {
		out = append(out, auditLogModelToModel(a))
	}
	return out, nil
}

// LogActionBun inserts an audit log entry with the current OS user.
func LogActionBun(bdb *bun.DB, action string, details string) error {
	ctx := context.Background()
	curUser, err := user.Current()
	username := "unknown"
	if err == nil {
		if parts := strings.Split(curUser.Username, `\`); len(parts) > 1 {
			username = parts[1]
		} else {
			username = curUser.Username
		}
	}
	am := &AuditLogModel{Timestamp: nowStamp(), Username: username, Action: action, Details: details}
	_, err = bdb.NewInsert().Model(am).Column("timestamp", "username", "action", "details").Exec(ctx)
	return MapDBError(err)
}

// ExportDataForBackupBun exports all tables' data into a model.BackupData using a Bun transaction.
func ExportDataForBackupBun(bdb *bun.DB) (*model.BackupData, error) {
	ctx := context.Background()
	var backup *model.BackupData
	err := WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		backup = &model.BackupData{SchemaVersion: 1}

		var sms []SettingModel
		if err := tx.NewSelect().Model(&sms).OrderExpr("?", bun.Ident("key")).Scan(ctx); err != nil {
			return err
		}
		for _, s := range sms {
			backup.Settings = append(backup.Settings, settingModelToModel(s))
		}

		var als []AuditLogModel
		if err := tx.NewSelect().Model(&als).OrderExpr("id").Scan(ctx); err != nil {
			return err
		}
		for _, a := range als {
			backup.AuditLogEntries = append(backup.AuditLogEntries, auditLogModelToModel(a))
		}

		return nil
	})
	return backup, err
}

// ImportDataFromBackupBun performs a full wipe-and-replace using a Bun transaction.
// Audit entries are re-inserted without their original IDs so the engine's
// auto-increment sequence stays consistent after the restore.
func ImportDataFromBackupBun(bdb *bun.DB, backup *model.BackupData) error {
	ctx := context.Background()
	return WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		for _, t := range []string{"audit_log", "settings"} {
			if _, err := ExecRaw(ctx, tx, "DELETE FROM "+t); err != nil {
				return err
			}
		}

		for _, st := range backup.Settings {
			sm := &SettingModel{Key: st.Key, Value: st.Value, UpdatedAt: st.UpdatedAt}
			if _, err := tx.NewInsert().Model(sm).Exec(ctx); err != nil {
				return MapDBError(err)
			}
		}
		for _, ale := range backup.AuditLogEntries {
			am := &AuditLogModel{Timestamp: ale.Timestamp, Username: ale.Username, Action: ale.Action, Details: ale.Details}
			if _, err := tx.NewInsert().Model(am).Column("timestamp", "username", "action", "details").Exec(ctx); err != nil {
				return MapDBError(err)
			}
		}
		return nil
	})
}

// IntegrateDataFromBackupBun restores settings non-destructively, skipping
// keys that already exist. The audit log is never merged from a backup; the
// restore itself is what gets audited.
func IntegrateDataFromBackupBun(bdb *bun.DB, backup *model.BackupData) error {
	ctx := context.Background()
	return WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		for _, st := range backup.Settings {
			sm := &SettingModel{Key: st.Key, Value: st.Value, UpdatedAt: st.UpdatedAt}
			// Ignore() renders the dialect's insert-or-skip form.
			if _, err := tx.NewInsert().Model(sm).Ignore().Exec(ctx); err != nil {
				return MapDBError(err)
			}
		}
		return nil
	})
}
