package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/post"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/tenant"
)

const (
	selectPostZH = `SELECT photo_id, text_zh, button_layout_zh FROM bot_posts WHERE bot_id = $1 AND post_name = $2`
	selectPostEN = `SELECT photo_id, text_en, button_layout_en FROM bot_posts WHERE bot_id = $1 AND post_name = $2`
)

// GetPost returns the language projection of a post.
func (s *Store) GetPost(ctx context.Context, t tenant.Context, name string, lang account.Language) (post.Content, error) {
	query := selectPostZH
	if lang == account.LanguageEN {
		query = selectPostEN
	}

	var c post.Content
	err := s.withConn(ctx, "get post", func(conn *pgxpool.Conn) error {
		var err error
		c, err = scanContent(conn.QueryRow(ctx, query, t.ID, name))
		if err != nil {
			return wrapErr(err, "get post %s", name)
		}
		return nil
	})
	return c, err
}

// SavePost replaces all content fields of a post, creating it if needed.
func (s *Store) SavePost(ctx context.Context, t tenant.Context, d post.Draft) error {
	return s.withConn(ctx, "save post", func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx,
			`INSERT INTO bot_posts (bot_id, post_name, photo_id, text_zh, button_layout_zh, text_en, button_layout_en)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (bot_id, post_name) DO UPDATE SET
			   photo_id = EXCLUDED.photo_id,
			   text_zh = EXCLUDED.text_zh,
			   button_layout_zh = EXCLUDED.button_layout_zh,
			   text_en = EXCLUDED.text_en,
			   button_layout_en = EXCLUDED.button_layout_en,
			   updated_at = now()`,
			t.ID, d.Name,
			nullIfEmpty(d.PhotoID),
			nullIfEmpty(d.TextZH), nullIfEmpty(d.ButtonsZH),
			nullIfEmpty(d.TextEN), nullIfEmpty(d.ButtonsEN))
		if err != nil {
			return wrapErr(err, "save post %s", d.Name)
		}
		return nil
	})
}

func scanContent(row scannable) (post.Content, error) {
	var photo, text, layout *string
	if err := row.Scan(&photo, &text, &layout); err != nil {
		return post.Content{}, err
	}
	return post.Content{PhotoID: deref(photo), Text: deref(text), Layout: deref(layout)}, nil
}
