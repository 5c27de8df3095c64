package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/errs"
	"github.com/ai-library/ai-library/client/model"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Bundle is the persisted client-side credential state. Exactly one
// bundle exists per store.
type Bundle struct {
	AccessToken  string `db:"access_token"`
	RefreshToken string `db:"refresh_token"`
	TokenType    string `db:"token_type"`
}

// Store keeps the token bundle and the last known member identity in a
// local sqlite database.
type Store struct {
	db  *sqlx.DB
	log *zap.Logger
}

func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open session store")
	}
	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, err
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return nil, errors.Wrap(err, "migrate session store")
	}
	return &Store{
		db:  db,
		log: log.Named("store"),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const (
	tokenTableName  = `token_bundle`
	memberTableName = `member_cache`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func (s *Store) SaveTokens(ctx context.Context, b Bundle) error {
	q, args, err := qb.Insert(tokenTableName).
		Columns("id", "access_token", "refresh_token", "token_type", "updated_at").
		Values(1, b.AccessToken, b.RefreshToken, b.TokenType, time.Now().UTC()).
		Suffix(`on conflict(id) do update set
			access_token=excluded.access_token,
			refresh_token=excluded.refresh_token,
			token_type=excluded.token_type,
			updated_at=excluded.updated_at`).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		s.log.Error("SaveTokens", zap.String("q", q), zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) Tokens(ctx context.Context) (Bundle, error) {
	q, args, err := qb.Select("access_token", "refresh_token", "token_type").
		From(tokenTableName).
		Where(sq.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return Bundle{}, err
	}
	var b Bundle
	if err := s.db.GetContext(ctx, &b, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Bundle{}, errs.ErrNoToken
		}
		return Bundle{}, err
	}
	return b, nil
}

func (s *Store) ClearTokens(ctx context.Context) error {
	q, args, err := qb.Delete(tokenTableName).ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *Store) SaveMember(ctx context.Context, m model.Member) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	q, args, err := qb.Insert(memberTableName).
		Columns("id", "payload", "updated_at").
		Values(1, string(payload), time.Now().UTC()).
		Suffix(`on conflict(id) do update set
			payload=excluded.payload,
			updated_at=excluded.updated_at`).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *Store) Member(ctx context.Context) (model.Member, error) {
	q, args, err := qb.Select("payload").
		From(memberTableName).
		Where(sq.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return model.Member{}, err
	}
	var payload string
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Member{}, errs.ErrNotFound
		}
		return model.Member{}, err
	}
	var m model.Member
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return model.Member{}, err
	}
	return m, nil
}

func (s *Store) ClearMember(ctx context.Context) error {
	q, args, err := qb.Delete(memberTableName).ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}

// AccessToken implements httpx.TokenSource.
func (s *Store) AccessToken(ctx context.Context) (string, bool) {
	b, err := s.Tokens(ctx)
	if err != nil || b.AccessToken == "" {
		return "", false
	}
	return b.AccessToken, true
}
