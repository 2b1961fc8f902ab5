package sharedcred

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	txcontext "veriport/pkg/platform/tx"
)

// PostgresStore persists shared credentials. Writes honor a transaction from
// context so the Disclosure Recorder can make a multi-credential presentation
// all-or-nothing.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, credential *SharedCredential) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO shared_credentials (id, user_id, issuer_id, verifier_id, credential)
		 VALUES ($1, $2, $3, $4, $5)`,
		credential.ID, credential.UserID, credential.IssuerID, credential.VerifierID, []byte(credential.Credential),
	)
	if err != nil {
		return fmt.Errorf("create shared credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*SharedCredential, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT id, user_id, issuer_id, verifier_id, credential, created_at
		 FROM shared_credentials WHERE user_id = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shared credentials: %w", err)
	}
	defer rows.Close()

	var out []*SharedCredential
	for rows.Next() {
		var credential SharedCredential
		var payload []byte
		if err := rows.Scan(&credential.ID, &credential.UserID, &credential.IssuerID,
			&credential.VerifierID, &payload, &credential.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shared credential: %w", err)
		}
		credential.Credential = payload
		out = append(out, &credential)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shared credentials: %w", err)
	}
	return out, nil
}
