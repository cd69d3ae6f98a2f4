package store

import (
	"context"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/domain"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

type Store interface {
	UpsertAreas(ctx context.Context, areas []*domain.Area) error
	UpsertContests(ctx context.Context, contests []*domain.Contest) error
	UpsertQuestions(ctx context.Context, questions []*domain.Question) error
	UpsertResults(ctx context.Context, results []*domain.Result) error
	UpsertMeta(ctx context.Context, meta []*domain.Meta) error
	DeleteResult(ctx context.Context, result *domain.Result) error

	AreasByMCD(ctx context.Context, mcdID string) ([]*domain.Area, error)
	ResultsByID(ctx context.Context, resultID string) ([]*domain.Result, error)
	ContestsByID(ctx context.Context, contestID string) ([]*domain.Contest, error)
	ListContests(ctx context.Context) ([]*domain.Contest, error)
	ListQuestions(ctx context.Context) ([]*domain.Question, error)
	PartiesForContest(ctx context.Context, contestID string) ([]string, error)

	GetContest(ctx context.Context, contestID string) (*domain.Contest, error)
	SearchContests(ctx context.Context, opts SearchContestsOpts) ([]*domain.Contest, error)
	ResultsByContest(ctx context.Context, contestID string) ([]*domain.Result, error)
	ListAreas(ctx context.Context, opts ListAreasOpts) ([]*domain.Area, error)
	ListMeta(ctx context.Context) ([]*domain.Meta, error)
}

type store struct {
	pool Pool
}

func NewStore(pool Pool) Store {
	return &store{pool}
}
