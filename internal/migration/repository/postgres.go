package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
)

const uniqueViolation = "23505"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS migration_projects (
    id                      TEXT PRIMARY KEY,
    project_name            TEXT NOT NULL,
    legacy_code             TEXT NOT NULL,
    status                  TEXT NOT NULL,
    current_phase           TEXT NOT NULL,
    audit_report            JSONB,
    blueprint               JSONB,
    blueprint_approved      BOOLEAN NOT NULL DEFAULT FALSE,
    blueprint_modifications TEXT,
    generated_code          JSONB,
    build_iterations        JSONB,
    success                 BOOLEAN,
    created_at              TIMESTAMPTZ NOT NULL,
    updated_at              TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS migration_projects_created_at_idx ON migration_projects (created_at DESC);
`

const projectColumns = `id, project_name, legacy_code, status, current_phase,
       audit_report, blueprint, blueprint_approved, blueprint_modifications,
       generated_code, build_iterations, success, created_at, updated_at`

// PostgresRepository keeps one row per project with artifacts in jsonb columns.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the projects table if it is missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *domain.Project) error {
	args, err := projectArgs(p)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO migration_projects (` + projectColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
`
	if _, err := r.pool.Exec(ctx, q, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrProjectExists, p.ID)
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*domain.Project, error) {
	const q = `SELECT ` + projectColumns + ` FROM migration_projects WHERE id = $1;`

	p, err := scanProject(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// Save writes status, phase and every artifact in a single statement.
func (r *PostgresRepository) Save(ctx context.Context, p *domain.Project) error {
	args, err := projectArgs(p)
	if err != nil {
		return err
	}

	const q = `
UPDATE migration_projects
SET project_name = $2, legacy_code = $3, status = $4, current_phase = $5,
    audit_report = $6, blueprint = $7, blueprint_approved = $8, blueprint_modifications = $9,
    generated_code = $10, build_iterations = $11, success = $12, created_at = $13, updated_at = $14
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM migration_projects ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func projectArgs(p *domain.Project) ([]any, error) {
	audit, err := nullableJSON(p.AuditReport)
	if err != nil {
		return nil, err
	}
	blueprint, err := nullableJSON(p.Blueprint)
	if err != nil {
		return nil, err
	}
	code, err := nullableJSON(p.GeneratedCode)
	if err != nil {
		return nil, err
	}
	var iterations []byte
	if p.BuildIterations != nil {
		if iterations, err = json.Marshal(p.BuildIterations); err != nil {
			return nil, fmt.Errorf("marshal build iterations: %w", err)
		}
	}

	return []any{
		p.ID, p.Name, p.LegacyCode, string(p.Status), string(p.Phase),
		audit, blueprint, p.BlueprintApproved, p.BlueprintModifications,
		code, iterations, p.BuildSucceeded, p.CreatedAt, p.UpdatedAt,
	}, nil
}

// nullableJSON maps a nil artifact to SQL NULL.
func nullableJSON[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return b, nil
}

func decodeNullable[T any](b []byte) (*T, error) {
	if len(b) == 0 {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(b, v); err != nil {
		return nil, fmt.Errorf("unmarshal %T: %w", v, err)
	}
	return v, nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var (
		p                              domain.Project
		status, phase                  string
		audit, blueprint, code, builds []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.LegacyCode, &status, &phase,
		&audit, &blueprint, &p.BlueprintApproved, &p.BlueprintModifications,
		&code, &builds, &p.BuildSucceeded, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)
	p.Phase = domain.Phase(phase)

	if p.AuditReport, err = decodeNullable[domain.AuditReport](audit); err != nil {
		return nil, err
	}
	if p.Blueprint, err = decodeNullable[domain.Blueprint](blueprint); err != nil {
		return nil, err
	}
	if p.GeneratedCode, err = decodeNullable[domain.CodeBundle](code); err != nil {
		return nil, err
	}
	if len(builds) > 0 {
		if err := json.Unmarshal(builds, &p.BuildIterations); err != nil {
			return nil, fmt.Errorf("unmarshal build iterations: %w", err)
		}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}
