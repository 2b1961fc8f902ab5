package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"veriport/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, request *PresentationRequest) error {
	credentialRequests, err := json.Marshal(request.CredentialRequests)
	if err != nil {
		return fmt.Errorf("marshal credential requests: %w", err)
	}
	var metadata []byte
	if request.Metadata != nil {
		metadata, err = json.Marshal(request.Metadata)
		if err != nil {
			return fmt.Errorf("marshal request metadata: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO presentation_requests
		 (id, verifier_id, holder_app_id, credential_requests, proof, metadata, deeplink, qr_code, data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		request.ID, request.VerifierID, request.HolderAppID, credentialRequests,
		nullableJSON(request.Proof), metadata, request.Deeplink, request.QRCode, nullableJSON(request.Data),
	)
	if err != nil {
		return fmt.Errorf("create presentation request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*PresentationRequest, error) {
	var request PresentationRequest
	var credentialRequests, proof, metadata, data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, verifier_id, holder_app_id, credential_requests, proof, metadata, deeplink, qr_code, data, created_at, updated_at
		 FROM presentation_requests WHERE id = $1`,
		id,
	).Scan(&request.ID, &request.VerifierID, &request.HolderAppID, &credentialRequests,
		&proof, &metadata, &request.Deeplink, &request.QRCode, &data, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find presentation request by id: %w", err)
	}

	if err := json.Unmarshal(credentialRequests, &request.CredentialRequests); err != nil {
		return nil, fmt.Errorf("unmarshal credential requests: %w", err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &request.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal request metadata: %w", err)
		}
	}
	request.Proof = proof
	request.Data = data
	return &request, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
