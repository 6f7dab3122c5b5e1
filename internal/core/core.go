// Package core holds the blog's business rules: feeds, posts, comments,
// follow edges, users and groups, all backed by raw SQL through SQLTemplate.
package core

import (
	"log/slog"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
)

var NoRecordFound = xerrors.Message("No record found")

type Core struct {
	log         *slog.Logger
	sqlTemplate *databaseutils.SQLTemplate
}

func NewCore(log *slog.Logger, sqlTemplate *databaseutils.SQLTemplate) *Core {
	return &Core{
		log:         log,
		sqlTemplate: sqlTemplate,
	}
}
