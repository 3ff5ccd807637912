package server

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spigell/resume-rank/internal/screening"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, fileRef string) (*screening.ParsedResume, error) {
	args := m.Called(ctx, fileRef)
	resume, _ := args.Get(0).(*screening.ParsedResume)
	return resume, args.Error(1)
}

type MockRanker struct {
	mock.Mock
}

func (m *MockRanker) Rank(ctx context.Context, job screening.JobPosting, candidates []screening.CandidateProfile) ([]screening.RankingScore, error) {
	args := m.Called(ctx, job, candidates)
	scores, _ := args.Get(0).([]screening.RankingScore)
	return scores, args.Error(1)
}
