// Package repo contains all database access logic for the TripMate backend.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txDB is a db that can also open a transaction. *pgxpool.Pool opens a real
// transaction; pgx.Tx opens a savepoint.
type txDB interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repos bundles every repository bound to the same connection or transaction.
type Repos struct {
	Users          UserRepo
	Meetings       MeetingRepo
	Members        MemberRepo
	Participations ParticipationRepo
	ChatRooms      ChatRoomRepo
	Expenses       ExpenseRepo
	Plans          PlanRepo
}

func newRepos(conn db) Repos {
	return Repos{
		Users:          NewUserRepo(conn),
		Meetings:       NewMeetingRepo(conn),
		Members:        NewMemberRepo(conn),
		Participations: NewParticipationRepo(conn),
		ChatRooms:      NewChatRoomRepo(conn),
		Expenses:       NewExpenseRepo(conn),
		Plans:          NewPlanRepo(conn),
	}
}

// Transactor gives services access to repositories, either directly or
// scoped to a single transaction.
type Transactor interface {
	// Repos returns repositories that run each statement on its own.
	Repos() Repos

	// InTx runs fn with repositories bound to one transaction. The transaction
	// commits if fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(r Repos) error) error
}

// Store is the Postgres Transactor.
type Store struct {
	conn txDB
}

// NewStore constructs a Store. In production pass *pgxpool.Pool; in tests
// pass a pgx.Tx so every InTx becomes a savepoint inside the test transaction.
func NewStore(conn txDB) *Store {
	return &Store{conn: conn}
}

// Repos returns repositories bound to the underlying connection.
func (s *Store) Repos() Repos {
	return newRepos(s.conn)
}

// InTx runs fn inside a transaction.
func (s *Store) InTx(ctx context.Context, fn func(r Repos) error) error {
	return pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		return fn(newRepos(tx))
	})
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// uniqueViolation reports whether err is a Postgres unique_violation on the
// named constraint (or on any constraint when name is empty).
func uniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func toUUID(v pgtype.UUID) uuid.UUID {
	return uuid.UUID(v.Bytes)
}
