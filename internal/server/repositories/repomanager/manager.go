// Package repomanager provides a facade over the per-aggregate
// repositories so services can obtain them bound to either a *sql.DB or a
// transaction handle.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/edensitko/RED-CRM-sub001/internal/dbx"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/conversations"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/documents"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/messages"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/records"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/refreshtokens"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/tasks"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/timetracking"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Conversations(db dbx.DBTX) conversations.Repository
	Messages(db dbx.DBTX) messages.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	TimeTracking(db dbx.DBTX) timetracking.Repository
	Documents(db dbx.DBTX) documents.Repository
	Records(db dbx.DBTX) records.Repository
}
