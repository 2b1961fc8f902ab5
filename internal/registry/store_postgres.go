package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"veriport/pkg/platform/sentinel"
	txcontext "veriport/pkg/platform/tx"
)

// PostgresStore persists registry entities in PostgreSQL. It exposes the same
// per-entity views as the in-memory store.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, company *Company) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO companies (id, name, customer_id, api_key) VALUES ($1, $2, $3, $4)`,
		company.ID, company.Name, company.CustomerID, company.APIKey,
	)
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	var company Company
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT id, name, customer_id, api_key, created_at, updated_at FROM companies WHERE id = $1`,
		id,
	).Scan(&company.ID, &company.Name, &company.CustomerID, &company.APIKey, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find company by id: %w", err)
	}
	return &company, nil
}

// Verifiers returns the verifier view of the PostgreSQL store.
func (s *PostgresStore) Verifiers() VerifierStore { return (*pgVerifiers)(s) }

// Issuers returns the issuer view of the PostgreSQL store.
func (s *PostgresStore) Issuers() IssuerStore { return (*pgIssuers)(s) }

// HolderApps returns the holder-app view of the PostgreSQL store.
func (s *PostgresStore) HolderApps() HolderAppStore { return (*pgHolderApps)(s) }

// Users returns the user view of the PostgreSQL store.
func (s *PostgresStore) Users() UserStore { return (*pgUsers)(s) }

type pgVerifiers PostgresStore

func (s *pgVerifiers) Create(ctx context.Context, verifier *Verifier) error {
	_, err := (*PostgresStore)(s).execer(ctx).ExecContext(ctx,
		`INSERT INTO verifiers (id, name, did, signing_key, encryption_key, auth_token, callback_url, company_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		verifier.ID, verifier.Name, verifier.DID, verifier.SigningKey,
		verifier.EncryptionKey, verifier.AuthToken, verifier.CallbackURL, verifier.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("create verifier: %w", err)
	}
	return nil
}

func (s *pgVerifiers) FindByID(ctx context.Context, id uuid.UUID) (*Verifier, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *pgVerifiers) FindByDID(ctx context.Context, did string) (*Verifier, error) {
	return s.findOne(ctx, `WHERE did = $1`, did)
}

func (s *pgVerifiers) findOne(ctx context.Context, where string, arg any) (*Verifier, error) {
	var verifier Verifier
	err := (*PostgresStore)(s).execer(ctx).QueryRowContext(ctx,
		`SELECT id, name, did, signing_key, encryption_key, auth_token, callback_url, company_id, created_at, updated_at
		 FROM verifiers `+where,
		arg,
	).Scan(&verifier.ID, &verifier.Name, &verifier.DID, &verifier.SigningKey, &verifier.EncryptionKey,
		&verifier.AuthToken, &verifier.CallbackURL, &verifier.CompanyID, &verifier.CreatedAt, &verifier.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verifier: %w", err)
	}
	return &verifier, nil
}

func (s *pgVerifiers) PatchAuthToken(ctx context.Context, id uuid.UUID, authToken string) error {
	result, err := (*PostgresStore)(s).execer(ctx).ExecContext(ctx,
		`UPDATE verifiers SET auth_token = $2, updated_at = now() WHERE id = $1`,
		id, authToken,
	)
	if err != nil {
		return fmt.Errorf("patch verifier auth token: %w", err)
	}
	return ensureRowAffected(result)
}

type pgIssuers PostgresStore

func (s *pgIssuers) Create(ctx context.Context, issuer *Issuer) error {
	_, err := (*PostgresStore)(s).execer(ctx).ExecContext(ctx,
		`INSERT INTO issuers (id, name, did, signing_key, auth_token, uri_scheme, company_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		issuer.ID, issuer.Name, issuer.DID, issuer.SigningKey,
		issuer.AuthToken, issuer.URIScheme, issuer.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("create issuer: %w", err)
	}
	return nil
}

func (s *pgIssuers) FindByID(ctx context.Context, id uuid.UUID) (*Issuer, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *pgIssuers) FindByDID(ctx context.Context, did string) (*Issuer, error) {
	return s.findOne(ctx, `WHERE did = $1`, did)
}

func (s *pgIssuers) findOne(ctx context.Context, where string, arg any) (*Issuer, error) {
	var issuer Issuer
	err := (*PostgresStore)(s).execer(ctx).QueryRowContext(ctx,
		`SELECT id, name, did, signing_key, auth_token, uri_scheme, company_id, created_at, updated_at
		 FROM issuers `+where,
		arg,
	).Scan(&issuer.ID, &issuer.Name, &issuer.DID, &issuer.SigningKey, &issuer.AuthToken,
		&issuer.URIScheme, &issuer.CompanyID, &issuer.CreatedAt, &issuer.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find issuer: %w", err)
	}
	return &issuer, nil
}

func (s *pgIssuers) PatchAuthToken(ctx context.Context, id uuid.UUID, authToken string) error {
	result, err := (*PostgresStore)(s).execer(ctx).ExecContext(ctx,
		`UPDATE issuers SET auth_token = $2, updated_at = now() WHERE id = $1`,
		id, authToken,
	)
	if err != nil {
		return fmt.Errorf("patch issuer auth token: %w", err)
	}
	return ensureRowAffected(result)
}

type pgHolderApps PostgresStore

func (s *pgHolderApps) Create(ctx context.Context, app *HolderApp) error {
	_, err := (*PostgresStore)(s).execer(ctx).ExecContext(ctx,
		`INSERT INTO holder_apps (id, name, uri_scheme, api_key_hash, company_id)
		 VALUES ($1, $2, $3, $4, $5)`,
		app.ID, app.Name, app.URIScheme, app.APIKeyHash, app.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("create holder app: %w", err)
	}
	return nil
}

func (s *pgHolderApps) FindByID(ctx context.Context, id uuid.UUID) (*HolderApp, error) {
	var app HolderApp
	err := (*PostgresStore)(s).execer(ctx).QueryRowContext(ctx,
		`SELECT id, name, uri_scheme, api_key_hash, company_id, created_at, updated_at
		 FROM holder_apps WHERE id = $1`,
		id,
	).Scan(&app.ID, &app.Name, &app.URIScheme, &app.APIKeyHash, &app.CompanyID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find holder app by id: %w", err)
	}
	return &app, nil
}

type pgUsers PostgresStore

func (s *pgUsers) Create(ctx context.Context, user *User) error {
	var userDID sql.NullString
	if user.DID != "" {
		userDID = sql.NullString{String: user.DID, Valid: true}
	}
	_, err := (*PostgresStore)(s).execer(ctx).ExecContext(ctx,
		`INSERT INTO users (id, name, did, company_id) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Name, userDID, user.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *pgUsers) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *pgUsers) FindByDID(ctx context.Context, did string) (*User, error) {
	if did == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findOne(ctx, `WHERE did = $1`, did)
}

func (s *pgUsers) findOne(ctx context.Context, where string, arg any) (*User, error) {
	var user User
	var userDID sql.NullString
	err := (*PostgresStore)(s).execer(ctx).QueryRowContext(ctx,
		`SELECT id, name, did, company_id, created_at, updated_at FROM users `+where,
		arg,
	).Scan(&user.ID, &user.Name, &userDID, &user.CompanyID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	user.DID = userDID.String
	return &user, nil
}

func (s *pgUsers) PatchDID(ctx context.Context, id uuid.UUID, did string) error {
	result, err := (*PostgresStore)(s).execer(ctx).ExecContext(ctx,
		`UPDATE users SET did = $2, updated_at = now() WHERE id = $1`,
		id, did,
	)
	if err != nil {
		return fmt.Errorf("patch user did: %w", err)
	}
	return ensureRowAffected(result)
}

func ensureRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
