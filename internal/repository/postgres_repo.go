package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"questionflow/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS questionnaires (
	id text primary key,
	host_id text not null,
	doc jsonb not null,
	version bigint not null,
	created_at timestamptz not null default now(),
	updated_at timestamptz not null default now()
);

CREATE INDEX IF NOT EXISTS questionnaires_host_idx ON questionnaires(host_id, updated_at desc);
`

type postgresRepo struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pgx pool to url
func OpenPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// NewPostgresQuestionnaireRepo creates a PostgreSQL questionnaire
// repository. Each questionnaire is one jsonb document.
func NewPostgresQuestionnaireRepo(pool *pgxpool.Pool) QuestionnaireRepo {
	return &postgresRepo{pool: pool}
}

// EnsurePostgresSchema creates the questionnaires table
func EnsurePostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func (r *postgresRepo) Create(ctx context.Context, q *model.Questionnaire) (string, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now
	q.Version = 1
	normalize(q)

	doc, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("marshal questionnaire: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO questionnaires (id, host_id, doc, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`, q.ID, q.HostID, doc, q.Version, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("insert questionnaire: %w", err)
	}
	return q.ID, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*model.Questionnaire, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT doc FROM questionnaires WHERE id=$1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeDoc(doc)
}

func (r *postgresRepo) GetByHostID(ctx context.Context, hostID string) ([]*model.Questionnaire, error) {
	rows, err := r.pool.Query(ctx, `SELECT doc FROM questionnaires WHERE host_id=$1 ORDER BY updated_at desc`, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []*model.Questionnaire{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		q, err := decodeDoc(doc)
		if err != nil {
			return nil, err
		}
		res = append(res, q)
	}
	return res, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, q *model.Questionnaire) error {
	expected := q.Version
	next := *q
	next.Version = expected + 1
	next.UpdatedAt = time.Now().UTC()
	normalize(&next)

	doc, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("marshal questionnaire: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
UPDATE questionnaires SET doc=$1, version=$2, updated_at=$3
WHERE id=$4 AND version=$5`, doc, next.Version, next.UpdatedAt, q.ID, expected)
	if err != nil {
		return fmt.Errorf("update questionnaire: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	q.Version = next.Version
	q.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questionnaires WHERE id=$1`, id)
	return err
}

func decodeDoc(doc []byte) (*model.Questionnaire, error) {
	var q model.Questionnaire
	if err := json.Unmarshal(doc, &q); err != nil {
		return nil, fmt.Errorf("decode questionnaire: %w", err)
	}
	normalize(&q)
	return &q, nil
}
