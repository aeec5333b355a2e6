package pgsql

import (
	portsrepo "github.com/SscSPs/autoledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:   newPgxAccountRepository(dbPool),
		JournalRepo:   newPgxJournalRepository(dbPool),
		OutboxRepo:    newPgxOutboxRepository(dbPool),
		ReportingRepo: newReportingRepository(dbPool),
		SourceLoader:  newPgxSourceLoader(dbPool),
	}
}
