package boiledrepos

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/drivers"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/trezcool/mtihani/core"
)

// table names
const (
	folderTable     = "folder"
	quizTable       = "quiz"
	questionTable   = "question"
	optionTable     = "answer_option"
	responseTable   = "response"
	completionTable = "completion"
)

// postgres error code
const foreignKeyViolation = "23503"

var dialect = drivers.Dialect{
	LQ: 0x22,
	RQ: 0x22,

	UseIndexPlaceholders: true,
	UseDefaultKeyword:    true,
}

// newQuery builds a postgres query from mods.
func newQuery(mods ...qm.QueryMod) *queries.Query {
	q := &queries.Query{}
	queries.SetDialect(q, &dialect)
	qm.Apply(q, mods...)
	return q
}

type baseRepository struct {
	exec core.DBExecutor
}

func (repo baseRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps psql "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// trapFKErr maps a foreign key violation to missing
func trapFKErr(err error, missing error, msg string) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == foreignKeyViolation {
		return missing
	}
	return errors.Wrap(err, msg)
}

// isUUID reports whether s can be compared with a uuid column. Postgres rejects anything else.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func orderBy(ordering []core.DBOrdering) qm.QueryMod {
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return qm.OrderBy(strings.Join(orderList, ", "))
}

func interfaces(ss []string) []interface{} {
	args := make([]interface{}, 0, len(ss))
	for _, s := range ss {
		args = append(args, s)
	}
	return args
}
