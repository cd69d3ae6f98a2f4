package store

import (
	"context"
	"fmt"
	"time"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/domain"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/logger"
)

var questionsColumns = []string{
	"question_id", "contest_id", "title", "sub_title", "question_body", "updated",
}

func (s *store) UpsertQuestions(ctx context.Context, questions []*domain.Question) error {
	if len(questions) == 0 {
		return nil
	}

	query := builder().Insert(tableQuestions).Columns(questionsColumns...)

	now := time.Now().UTC()
	for _, question := range questions {
		question.Updated = now
		query = query.Values(
			question.QuestionID, question.ContestID, question.Title,
			question.SubTitle, question.QuestionBody, question.Updated,
		)
	}

	query = query.Suffix(`
on conflict (question_id)
do update
set
	contest_id = excluded.contest_id,
	title = excluded.title,
	sub_title = excluded.sub_title,
	question_body = excluded.question_body,
	updated = excluded.updated`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		logger.Error(ctx, err.Error())
		return fmt.Errorf("upsert questions: %w", err)
	}

	return nil
}

func (s *store) ListQuestions(ctx context.Context) ([]*domain.Question, error) {
	query := builder().Select(questionsColumns...).
		From(tableQuestions).
		OrderBy("question_id")

	var selected []*domain.Question
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		logger.Error(ctx, err.Error())
		return nil, wrapErr(err)
	}

	return selected, nil
}
