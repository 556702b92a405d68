package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/otel"
)

// Store runs queries on their own or inside a single transaction.
type Store interface {
	Querier
	ExecTx(c context.Context, fn func(Querier) error) error
}

type SQLStore struct {
	*Queries
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *SQLStore {
	return &SQLStore{Queries: New(pool), pool: pool}
}

// ExecTx commits when fn returns nil and rolls back otherwise.
func (s *SQLStore) ExecTx(c context.Context, fn func(Querier) error) (err error) {
	c, span := otel.Tracer.Start(c, "SQLStore ExecTx")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "SQLStore ExecTx").Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Trace().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", translate(err))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("initialized transaction")
	defer func(lg zerolog.Logger) {
		l := lg.With().Str(log.KeyProcess, "rolling back transaction").Logger()
		rollbackErr := tx.Rollback(c)
		if rollbackErr != nil {
			if errors.Is(rollbackErr, pgx.ErrTxClosed) {
				return
			}
			rollbackErr = fmt.Errorf("failed rolling back transaction with error=%w", rollbackErr)
			otel.RecordError(rollbackErr, span)
			l.Error().Err(rollbackErr).Msg(rollbackErr.Error())
			return
		}
		l.Trace().Msg("rolled back transaction")
	}(logger)

	if err = fn(s.Queries.WithTx(tx)); err != nil {
		otel.RecordError(err, span)
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Trace().Msg("committing transaction")
	if err = tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", translate(err))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("committed transaction")

	return nil
}
