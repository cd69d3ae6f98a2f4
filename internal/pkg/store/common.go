package store

import (
	"errors"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/constants"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const (
	tableAreas     = "areas"
	tableContests  = "contests"
	tableQuestions = "questions"
	tableResults   = "results"
	tableMeta      = "meta"
)

var mapping = map[error]error{pgx.ErrNoRows: constants.ErrDBNotFound}

func wrapErr(err error) error {
	for k, v := range mapping {
		if errors.Is(err, k) {
			return v
		}
	}
	return err
}

// builder returns a squirrel statement builder with postgres placeholders.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
