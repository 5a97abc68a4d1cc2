// Package repository implements persistence for posts and their delivery targets.
// Repositories support both PostgreSQL and MySQL and join the caller's transaction
// through database.GetTx.
package repository

import (
	"encoding/json"

	apperrors "github.com/allisson/postflow/internal/errors"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const postColumns = `id, workspace_id, status, content, scheduled_at, timezone, submitted_at,
			  approved_at, rejected_at, rejection_reason, published_at, created_at, updated_at`

const targetColumns = `id, post_id, account_id, platform, status, external_post_id, external_post_url,
			  error_code, error_message, retry_count, published_at, created_at, updated_at`

func marshalContent(content publishingDomain.Content) ([]byte, error) {
	data, err := json.Marshal(content)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal post content")
	}
	return data, nil
}

func unmarshalContent(data []byte, content *publishingDomain.Content) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, content); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal post content")
	}
	return nil
}
