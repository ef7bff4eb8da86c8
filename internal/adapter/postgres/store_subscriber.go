package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/tenant"
)

// ListSubscriberIDs returns every user subscribed to the tenant, oldest first.
func (s *Store) ListSubscriberIDs(ctx context.Context, t tenant.Context) ([]int64, error) {
	var ids []int64
	err := s.withConn(ctx, "list subscribers", func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT user_id FROM bot_subscribers WHERE bot_id = $1 ORDER BY created_at, user_id`, t.ID)
		if err != nil {
			return wrapErr(err, "list subscribers")
		}
		defer rows.Close()

		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return wrapErr(err, "scan subscriber")
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			return wrapErr(err, "list subscribers")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) CountSubscribers(ctx context.Context, t tenant.Context) (int, error) {
	var n int
	err := s.withConn(ctx, "count subscribers", func(conn *pgxpool.Conn) error {
		if err := conn.QueryRow(ctx,
			`SELECT COUNT(*) FROM bot_subscribers WHERE bot_id = $1`, t.ID).Scan(&n); err != nil {
			return wrapErr(err, "count subscribers")
		}
		return nil
	})
	return n, err
}
