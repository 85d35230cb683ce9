package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/image2text/internal/common"
	"github.com/joseph-ayodele/image2text/internal/entity"
)

const (
	extractionsTable = "extractions"
	defaultListLimit = 50

	// fixed-width so that TEXT ordering matches time ordering
	createdAtLayout = "2006-01-02T15:04:05.000000000Z"
)

var extractionColumns = []string{
	"id", "source_path", "content_hash", "source_type", "mode", "method", "status",
	"error_kind", "error_message", "text", "pages", "duration_ms", "created_at",
}

type ExtractionRepository interface {
	Create(ctx context.Context, x *entity.Extraction) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Extraction, error)
	List(ctx context.Context, filter entity.ExtractionFilter) ([]*entity.Extraction, error)
}

type extractionRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewExtractionRepository(db *DB, logger *slog.Logger) ExtractionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &extractionRepo{db: db, logger: logger}
}

// Create stores x, filling in ID and CreatedAt when they are zero.
func (r *extractionRepo) Create(ctx context.Context, x *entity.Extraction) error {
	if x.ID == uuid.Nil {
		x.ID = uuid.New()
	}
	if x.CreatedAt.IsZero() {
		x.CreatedAt = time.Now()
	}
	x.CreatedAt = x.CreatedAt.UTC()

	query, args := entsql.Dialect(r.db.Dialect()).
		Insert(extractionsTable).
		Columns(extractionColumns...).
		Values(
			x.ID.String(), x.SourcePath, x.ContentHash, x.SourceType, x.Mode, x.Method, x.Status,
			x.ErrorKind, x.ErrorMessage, x.Text, x.Pages, x.DurationMs, x.CreatedAt.Format(createdAtLayout),
		).
		Query()
	if _, err := r.db.drv.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to record extraction", "source_path", x.SourcePath, "error", err)
		return common.NewAppError("DATABASE_ERROR", "record extraction", errors.Join(common.ErrDatabase, err))
	}
	r.logger.Debug("extraction recorded", "id", x.ID, "status", x.Status)
	return nil
}

func (r *extractionRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Extraction, error) {
	query, args := entsql.Dialect(r.db.Dialect()).
		Select(extractionColumns...).
		From(entsql.Table(extractionsTable)).
		Where(entsql.EQ("id", id.String())).
		Query()

	rows, err := r.db.drv.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to get extraction", "id", id, "error", err)
		return nil, common.NewAppError("DATABASE_ERROR", "get extraction", errors.Join(common.ErrDatabase, err))
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, common.NewAppError("DATABASE_ERROR", "get extraction", errors.Join(common.ErrDatabase, err))
		}
		return nil, common.NewAppError("NOT_FOUND", "extraction "+id.String(), common.ErrNotFound)
	}
	return scanExtraction(rows)
}

// List returns the newest extractions first.
func (r *extractionRepo) List(ctx context.Context, filter entity.ExtractionFilter) ([]*entity.Extraction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	sel := entsql.Dialect(r.db.Dialect()).
		Select(extractionColumns...).
		From(entsql.Table(extractionsTable))
	if filter.Status != "" {
		sel.Where(entsql.EQ("status", filter.Status))
	}
	if filter.SourceType != "" {
		sel.Where(entsql.EQ("source_type", filter.SourceType))
	}
	query, args := sel.
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Limit(limit).
		Query()

	rows, err := r.db.drv.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list extractions", "error", err)
		return nil, common.NewAppError("DATABASE_ERROR", "list extractions", errors.Join(common.ErrDatabase, err))
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.Extraction
	for rows.Next() {
		x, err := scanExtraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DATABASE_ERROR", "list extractions", errors.Join(common.ErrDatabase, err))
	}
	return out, nil
}

func scanExtraction(rows *sql.Rows) (*entity.Extraction, error) {
	var (
		x         entity.Extraction
		id        string
		createdAt string
	)
	if err := rows.Scan(
		&id, &x.SourcePath, &x.ContentHash, &x.SourceType, &x.Mode, &x.Method, &x.Status,
		&x.ErrorKind, &x.ErrorMessage, &x.Text, &x.Pages, &x.DurationMs, &createdAt,
	); err != nil {
		return nil, common.NewAppError("DATABASE_ERROR", "scan extraction", errors.Join(common.ErrDatabase, err))
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, common.NewAppError("DATABASE_ERROR", "bad extraction id "+id, err)
	}
	x.ID = parsed
	if x.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
		return nil, common.NewAppError("DATABASE_ERROR", "bad created_at "+createdAt, err)
	}
	return &x, nil
}
