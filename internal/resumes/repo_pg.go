package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres. The aggregate is stored as one row;
// nested structures live in JSONB columns.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, template_id, title, content, customization, version, version_history,
share_id, is_public, privacy_consent, share_settings, view_count, revision, deleted_at, created_at, updated_at`

var sortColumns = map[string]string{
	"updatedAt": "updated_at",
	"createdAt": "created_at",
	"title":     "title",
}

// Create inserts a new resume.
func (r *PGRepo) Create(ctx context.Context, res Resume) error {
	const query = `
INSERT INTO resumes (
    id,
    user_id,
    template_id,
    title,
    content,
    customization,
    version,
    version_history,
    share_id,
    is_public,
    privacy_consent,
    share_settings,
    view_count,
    revision,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	cols, err := encodeColumns(res)
	if err != nil {
		return err
	}
	revision := res.Revision
	if revision == 0 {
		revision = 1
	}
	_, err = r.DB.ExecContext(
		ctx,
		query,
		res.ID,
		res.UserID,
		nullString(res.TemplateID),
		res.Title,
		cols.content,
		cols.customization,
		res.Version,
		cols.versions,
		nullString(res.ShareID),
		res.IsPublic,
		cols.consent,
		cols.share,
		res.Share.ViewCount,
		revision,
		res.CreatedAt,
		res.UpdatedAt,
	)
	return mapWriteErr(err)
}

// Get returns a live resume owned by userID.
func (r *PGRepo) Get(ctx context.Context, userID, id string) (Resume, error) {
	query := `
SELECT ` + resumeColumns + `
FROM resumes
WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
LIMIT 1`
	return scanOne(r.DB.QueryRowContext(ctx, query, id, userID))
}

// GetByShareID returns a live public resume by its share id.
func (r *PGRepo) GetByShareID(ctx context.Context, shareID string) (Resume, error) {
	query := `
SELECT ` + resumeColumns + `
FROM resumes
WHERE share_id = $1 AND is_public = TRUE AND deleted_at IS NULL
LIMIT 1`
	return scanOne(r.DB.QueryRowContext(ctx, query, shareID))
}

// Update writes every mutable column guarded by the revision.
func (r *PGRepo) Update(ctx context.Context, res Resume) (Resume, error) {
	const query = `
UPDATE resumes
SET template_id = $3,
    title = $4,
    content = $5,
    customization = $6,
    version = $7,
    version_history = $8,
    share_id = $9,
    is_public = $10,
    privacy_consent = $11,
    share_settings = $12,
    updated_at = $13,
    revision = revision + 1
WHERE id = $1 AND user_id = $2 AND revision = $14 AND deleted_at IS NULL
RETURNING revision, view_count, created_at`

	cols, err := encodeColumns(res)
	if err != nil {
		return Resume{}, err
	}
	err = r.DB.QueryRowContext(
		ctx,
		query,
		res.ID,
		res.UserID,
		nullString(res.TemplateID),
		res.Title,
		cols.content,
		cols.customization,
		res.Version,
		cols.versions,
		nullString(res.ShareID),
		res.IsPublic,
		cols.consent,
		cols.share,
		res.UpdatedAt,
		res.Revision,
	).Scan(&res.Revision, &res.Share.ViewCount, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, r.missOrConflict(ctx, res.UserID, res.ID)
	}
	if err != nil {
		return Resume{}, mapWriteErr(err)
	}
	return res, nil
}

// missOrConflict tells a vanished row from a lost revision race.
func (r *PGRepo) missOrConflict(ctx context.Context, userID, id string) error {
	const query = `SELECT 1 FROM resumes WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`
	var one int
	err := r.DB.QueryRowContext(ctx, query, id, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrConflict
}

// SoftDelete marks a resume deleted. A second delete affects no row and is ErrNotFound.
func (r *PGRepo) SoftDelete(ctx context.Context, userID, id string, at time.Time) error {
	const query = `
UPDATE resumes
SET deleted_at = $3, updated_at = $3, revision = revision + 1
WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	result, err := r.DB.ExecContext(ctx, query, id, userID, at)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of live resumes and the total match count.
func (r *PGRepo) List(ctx context.Context, userID string, q ListQuery) ([]Resume, int, error) {
	q = q.Normalize()

	where := "user_id = $1 AND deleted_at IS NULL"
	args := []any{userID}
	if q.Search != "" {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		where += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM resumes WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	direction := "DESC"
	if q.Order == "asc" {
		direction = "ASC"
	}
	query := fmt.Sprintf(`
SELECT %s
FROM resumes
WHERE %s
ORDER BY %s %s, id %s
LIMIT $%d OFFSET $%d`, resumeColumns, where, sortColumns[q.Sort], direction, direction, len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Resume{}
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, res)
	}
	return out, total, rows.Err()
}

// Stats counts live resumes and those updated since the given time.
func (r *PGRepo) Stats(ctx context.Context, userID string, since time.Time) (Stats, error) {
	const query = `
SELECT COUNT(*), COUNT(*) FILTER (WHERE updated_at >= $2)
FROM resumes
WHERE user_id = $1 AND deleted_at IS NULL`

	var st Stats
	if err := r.DB.QueryRowContext(ctx, query, userID, since).Scan(&st.Total, &st.RecentUpdates); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// IncrementViewCount bumps the counter in place so concurrent viewers are not lost.
func (r *PGRepo) IncrementViewCount(ctx context.Context, id string) (int64, error) {
	const query = `
UPDATE resumes
SET view_count = view_count + 1
WHERE id = $1 AND deleted_at IS NULL
RETURNING view_count`

	var n int64
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return n, err
}

type encoded struct {
	content, customization, versions, consent, share []byte
}

func encodeColumns(res Resume) (encoded, error) {
	var (
		out encoded
		err error
	)
	if out.content, err = json.Marshal(res.Content); err != nil {
		return encoded{}, fmt.Errorf("encode content: %w", err)
	}
	if out.customization, err = json.Marshal(res.Customization); err != nil {
		return encoded{}, fmt.Errorf("encode customization: %w", err)
	}
	versions := res.Versions
	if versions == nil {
		versions = []VersionSnapshot{}
	}
	if out.versions, err = json.Marshal(versions); err != nil {
		return encoded{}, fmt.Errorf("encode version history: %w", err)
	}
	if out.consent, err = json.Marshal(res.Consent); err != nil {
		return encoded{}, fmt.Errorf("encode consent: %w", err)
	}
	if out.share, err = json.Marshal(res.Share); err != nil {
		return encoded{}, fmt.Errorf("encode share settings: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(row rowScanner) (Resume, error) {
	res, err := scanResume(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	return res, err
}

func scanResume(row rowScanner) (Resume, error) {
	var (
		res                                              Resume
		templateID, shareID                              sql.NullString
		content, customization, versions, consent, share []byte
		viewCount                                        int64
		deletedAt                                        sql.NullTime
	)
	if err := row.Scan(
		&res.ID,
		&res.UserID,
		&templateID,
		&res.Title,
		&content,
		&customization,
		&res.Version,
		&versions,
		&shareID,
		&res.IsPublic,
		&consent,
		&share,
		&viewCount,
		&res.Revision,
		&deletedAt,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		return Resume{}, err
	}
	if templateID.Valid {
		res.TemplateID = templateID.String
	}
	if shareID.Valid {
		res.ShareID = shareID.String
	}
	if deletedAt.Valid {
		res.DeletedAt = &deletedAt.Time
	}
	for _, col := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"content", content, &res.Content},
		{"customization", customization, &res.Customization},
		{"version_history", versions, &res.Versions},
		{"privacy_consent", consent, &res.Consent},
		{"share_settings", share, &res.Share},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return Resume{}, fmt.Errorf("decode %s of resume %s: %w", col.name, res.ID, err)
		}
	}
	res.Share.ViewCount = viewCount
	return res, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// mapWriteErr turns a unique violation (share id or primary key) into ErrConflict.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}
