package store

import (
	"context"
	"fmt"
	"time"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/domain"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/logger"
)

var metaColumns = []string{"key", "value", "type", "updated"}

func (s *store) UpsertMeta(ctx context.Context, meta []*domain.Meta) error {
	if len(meta) == 0 {
		return nil
	}

	query := builder().Insert(tableMeta).Columns(metaColumns...)

	now := time.Now().UTC()
	for _, record := range meta {
		record.Updated = now
		query = query.Values(record.Key, record.Value, record.Type, record.Updated)
	}

	query = query.Suffix(`
on conflict (key)
do update
set
	value = excluded.value,
	type = excluded.type,
	updated = excluded.updated`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		logger.Error(ctx, err.Error())
		return fmt.Errorf("upsert meta: %w", err)
	}

	return nil
}

func (s *store) ListMeta(ctx context.Context) ([]*domain.Meta, error) {
	query := builder().Select(metaColumns...).
		From(tableMeta).
		OrderBy("key")

	var selected []*domain.Meta
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		logger.Error(ctx, err.Error())
		return nil, wrapErr(err)
	}

	return selected, nil
}
