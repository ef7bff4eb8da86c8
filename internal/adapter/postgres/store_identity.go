package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/tenant"
)

// --- Subscriptions (tenant-scoped) ---

func (s *Store) GetLanguage(ctx context.Context, t tenant.Context, userID int64) (account.Language, error) {
	var lang string
	err := s.withConn(ctx, "get language", func(conn *pgxpool.Conn) error {
		err := conn.QueryRow(ctx,
			`SELECT COALESCE(language, '') FROM bot_subscribers WHERE user_id = $1 AND bot_id = $2`,
			userID, t.ID).Scan(&lang)
		if err != nil {
			return wrapErr(err, "get language %d", userID)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if l, ok := account.ParseLanguage(lang); ok {
		return l, nil
	}
	return account.DefaultLanguage, nil
}

// UpsertSubscription records one contact: a new row starts at count 1, an
// existing row is incremented and gets the latest username and language.
func (s *Store) UpsertSubscription(ctx context.Context, t tenant.Context, user account.User, lang account.Language) error {
	return s.withConn(ctx, "upsert subscription", func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx,
			`INSERT INTO bot_subscribers (user_id, bot_id, username, language, interaction_count)
			 VALUES ($1, $2, $3, $4, 1)
			 ON CONFLICT (user_id, bot_id) DO UPDATE SET
			   username = EXCLUDED.username,
			   language = EXCLUDED.language,
			   interaction_count = bot_subscribers.interaction_count + 1,
			   updated_at = now()`,
			user.ID, t.ID, user.DisplayName(), string(lang))
		if err != nil {
			return wrapErr(err, "upsert subscription %d", user.ID)
		}
		return nil
	})
}

// --- Credentials (global) ---

func (s *Store) GetExternalKey(ctx context.Context, userID int64) (string, error) {
	var key string
	err := s.withConn(ctx, "get external key", func(conn *pgxpool.Conn) error {
		err := conn.QueryRow(ctx,
			`SELECT COALESCE(user_key, '') FROM global_keys WHERE user_id = $1`, userID).Scan(&key)
		if err != nil {
			return wrapErr(err, "get external key %d", userID)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", fmt.Errorf("get external key %d: %w", userID, domain.ErrNotFound)
	}
	return key, nil
}

// UpsertCredential stores the external key together with the latest username
// and the tenant the user was last active in. An empty key never replaces a
// stored one; it degrades to TouchCredential.
func (s *Store) UpsertCredential(ctx context.Context, t tenant.Context, user account.User, key string) error {
	if key == "" {
		return s.TouchCredential(ctx, t, user)
	}
	return s.withConn(ctx, "upsert credential", func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx,
			`INSERT INTO global_keys (user_id, user_key, username, bot_id)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (user_id) DO UPDATE SET
			   user_key = EXCLUDED.user_key,
			   username = EXCLUDED.username,
			   bot_id = EXCLUDED.bot_id`,
			user.ID, key, user.DisplayName(), t.ID)
		if err != nil {
			return wrapErr(err, "upsert credential %d", user.ID)
		}
		return nil
	})
}

// TouchCredential refreshes username and last-active tenant of an existing
// credential. It is a no-op for users without one.
func (s *Store) TouchCredential(ctx context.Context, t tenant.Context, user account.User) error {
	return s.withConn(ctx, "touch credential", func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx,
			`UPDATE global_keys SET username = $2, bot_id = $3 WHERE user_id = $1`,
			user.ID, user.DisplayName(), t.ID)
		if err != nil {
			return wrapErr(err, "touch credential %d", user.ID)
		}
		return nil
	})
}
