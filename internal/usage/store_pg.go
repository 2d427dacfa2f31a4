package usage

import (
	"context"
	"database/sql"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed download store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) Record(ctx context.Context, d Download) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO downloads (id, user_id, resume_id, format, shared, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.UserID, d.ResumeID, d.Format, d.Shared, d.CreatedAt)
	return err
}

func (s *pgStore) Summary(ctx context.Context, userID string) (Summary, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT format, COUNT(*), COUNT(*) FILTER (WHERE shared)
FROM downloads
WHERE user_id = $1
GROUP BY format
ORDER BY format`, userID)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	sum := Summary{ByFormat: map[string]int{}}
	for rows.Next() {
		var (
			format        string
			total, shared int
		)
		if err := rows.Scan(&format, &total, &shared); err != nil {
			return Summary{}, err
		}
		sum.ByFormat[format] = total
		sum.Total += total
		sum.Shared += shared
	}
	return sum, rows.Err()
}
