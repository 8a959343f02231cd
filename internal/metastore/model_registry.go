package metastore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lcindex/lcindex/internal/ixerrors"
)

// --- Model registry operations ---

func (s *SQLiteStore) RegisterModel(ctx context.Context, entry *ModelRegistryEntry) error {
	if entry == nil || entry.ModelName == "" || entry.Version == "" {
		return fmt.Errorf("model registry entry requires modelName and version")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO model_registry (model_name, version, file_path, checksum, signature_verified, download_date, last_verification)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(model_name, version) DO UPDATE SET
			file_path          = excluded.file_path,
			checksum           = excluded.checksum,
			signature_verified = excluded.signature_verified,
			download_date      = excluded.download_date,
			last_verification  = excluded.last_verification
	`, entry.ModelName, entry.Version, entry.FilePath, entry.Checksum,
		boolToInt(entry.SignatureVerified), timeToUnix(entry.DownloadDate), timeToUnix(entry.LastVerification))
	if err != nil {
		return fmt.Errorf("failed to register model: %w", err)
	}
	return s.AppendSecurityAudit(ctx, &SecurityAuditEvent{
		OccurredAt: time.Now().UTC(),
		EventType:  "model_registered",
		Subject:    entry.ModelName + "@" + entry.Version,
		Detail:     entry.FilePath,
	})
}

func (s *SQLiteStore) scanModelRegistryEntry(row interface {
	Scan(dest ...interface{}) error
}) (*ModelRegistryEntry, error) {
	var e ModelRegistryEntry
	var verified int
	var downloadDate, lastVerification int64
	if err := row.Scan(&e.ModelName, &e.Version, &e.FilePath, &e.Checksum,
		&verified, &downloadDate, &lastVerification); err != nil {
		return nil, err
	}
	e.SignatureVerified = verified != 0
	e.DownloadDate = unixToTime(downloadDate)
	e.LastVerification = unixToTime(lastVerification)
	return &e, nil
}

const modelRegistryColumns = `model_name, version, file_path, checksum, signature_verified, download_date, last_verification`

func (s *SQLiteStore) GetModelRegistryEntry(ctx context.Context, modelName, version string) (*ModelRegistryEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+modelRegistryColumns+` FROM model_registry WHERE model_name = ? AND version = ?`,
		modelName, version)
	entry, err := s.scanModelRegistryEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model registry entry: %w", err)
	}
	return entry, nil
}

func (s *SQLiteStore) ListModelRegistryEntries(ctx context.Context) ([]*ModelRegistryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+modelRegistryColumns+` FROM model_registry ORDER BY model_name, version`)
	if err != nil {
		return nil, fmt.Errorf("failed to list model registry entries: %w", err)
	}
	defer rows.Close()

	var entries []*ModelRegistryEntry
	for rows.Next() {
		e, err := s.scanModelRegistryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model registry entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// VerifyModel recomputes the SHA-256 of filePath and records the result
// against the model's registry entry and the verification_history/
// security_audit tables. A model must already be registered (RegisterModel)
// before it can be verified.
func (s *SQLiteStore) VerifyModel(ctx context.Context, modelName, version, filePath string) (*ModelRegistryEntry, error) {
	entry, err := s.GetModelRegistryEntry(ctx, modelName, version)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ixerrors.New(ixerrors.ErrCodeModelVerificationFailed,
			fmt.Sprintf("model %s@%s is not registered", modelName, version), nil)
	}

	now := time.Now().UTC()
	checksum, hashErr := sha256File(filePath)
	success := hashErr == nil
	detail := ""
	if hashErr != nil {
		detail = hashErr.Error()
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO verification_history (model_name, version, verified_at, success, checksum, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`, modelName, version, now.UnixNano(), boolToInt(success), checksum, detail); err != nil {
		return nil, fmt.Errorf("failed to record verification history: %w", err)
	}

	entry.Checksum = checksum
	entry.SignatureVerified = success
	entry.LastVerification = now
	entry.FilePath = filePath

	if _, err := s.db.ExecContext(ctx, `
		UPDATE model_registry SET checksum = ?, signature_verified = ?, last_verification = ?, file_path = ?
		WHERE model_name = ? AND version = ?
	`, checksum, boolToInt(success), now.UnixNano(), filePath, modelName, version); err != nil {
		return nil, fmt.Errorf("failed to update model registry entry: %w", err)
	}

	eventType := "model_verified"
	if !success {
		eventType = "model_verify_failed"
	}
	if auditErr := s.AppendSecurityAudit(ctx, &SecurityAuditEvent{
		OccurredAt: now,
		EventType:  eventType,
		Subject:    modelName + "@" + version,
		Detail:     detail,
	}); auditErr != nil {
		return nil, auditErr
	}

	if !success {
		return entry, ixerrors.New(ixerrors.ErrCodeModelVerificationFailed,
			fmt.Sprintf("checksum verification failed for model %s@%s: %s", modelName, version, detail), hashErr)
	}
	return entry, nil
}

// ActivateModel gates model activation on the registry's checksumVerified
// invariant: a model cannot be activated unless a prior VerifyModel call
// succeeded. It does not itself compute a checksum.
func (s *SQLiteStore) ActivateModel(ctx context.Context, modelName, version string) error {
	entry, err := s.GetModelRegistryEntry(ctx, modelName, version)
	if err != nil {
		return err
	}
	if entry == nil {
		return ixerrors.New(ixerrors.ErrCodeModelVerificationFailed,
			fmt.Sprintf("model %s@%s is not registered", modelName, version), nil)
	}
	if !entry.SignatureVerified {
		_ = s.AppendSecurityAudit(ctx, &SecurityAuditEvent{
			OccurredAt: time.Now().UTC(),
			EventType:  "model_activation_rejected",
			Subject:    modelName + "@" + version,
			Detail:     "checksum not verified",
		})
		return ixerrors.New(ixerrors.ErrCodeModelVerificationFailed,
			fmt.Sprintf("model %s@%s cannot be activated: checksum not verified", modelName, version), nil)
	}
	return s.AppendSecurityAudit(ctx, &SecurityAuditEvent{
		OccurredAt: time.Now().UTC(),
		EventType:  "model_activated",
		Subject:    modelName + "@" + version,
	})
}

// --- Security audit ---

func (s *SQLiteStore) AppendSecurityAudit(ctx context.Context, event *SecurityAuditEvent) error {
	if event == nil {
		return nil
	}
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO security_audit (occurred_at, event_type, subject, detail)
		VALUES (?, ?, ?, ?)
	`, occurredAt.UnixNano(), event.EventType, event.Subject, event.Detail)
	if err != nil {
		return fmt.Errorf("failed to append security audit event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListSecurityAudit(ctx context.Context, limit int) ([]*SecurityAuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT occurred_at, event_type, subject, detail FROM security_audit
		ORDER BY occurred_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list security audit events: %w", err)
	}
	defer rows.Close()

	var events []*SecurityAuditEvent
	for rows.Next() {
		var e SecurityAuditEvent
		var occurredAt int64
		if err := rows.Scan(&occurredAt, &e.EventType, &e.Subject, &e.Detail); err != nil {
			return nil, err
		}
		e.OccurredAt = unixToTime(occurredAt)
		events = append(events, &e)
	}
	return events, rows.Err()
}

// RotateSecurityAudit trims the append-only log down to maxRows, keeping the
// most recent entries, and reports how many rows were purged. This is the
// "rotation by count" policy spec.md's persisted-layout section calls for
// on security/logs/security-audit.jsonl; the SQLite table is the only
// store of audit events, and no jsonl copy of it is written.
func (s *SQLiteStore) RotateSecurityAudit(ctx context.Context, maxRows int) (int64, error) {
	if maxRows <= 0 {
		return 0, fmt.Errorf("maxRows must be positive")
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM security_audit WHERE id NOT IN (
			SELECT id FROM security_audit ORDER BY occurred_at DESC LIMIT ?
		)`, maxRows)
	if err != nil {
		return 0, fmt.Errorf("failed to rotate security audit log: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
