package screening

import (
	"context"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/resume-rank/internal/ai"
	"github.com/spigell/resume-rank/internal/logger"
	"github.com/spigell/resume-rank/internal/utils"
)

const (
	minScore = 0
	maxScore = 100
)

// Ranker scores candidates against a job posting.
type Ranker struct {
	completer ai.Completer
	opts      Options
	logger    *zap.Logger
}

func NewRanker(completer ai.Completer, opts Options, log *zap.Logger) *Ranker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ranker{
		completer: completer,
		opts:      opts.withDefaults(defaultRankMaxTokens),
		logger:    log,
	}
}

// rankingItem mirrors one entry of the model's rankings array. Pointers tell
// a missing field apart from a zero value.
type rankingItem struct {
	ResumeID             *float64 `mapstructure:"resume_id"`
	SkillMatchScore      *float64 `mapstructure:"skill_match_score"`
	ExperienceMatchScore *float64 `mapstructure:"experience_match_score"`
	OverallScore         *float64 `mapstructure:"overall_score"`
	Summary              *string  `mapstructure:"summary"`
}

func (i rankingItem) missing() []string {
	var fields []string
	if i.ResumeID == nil {
		fields = append(fields, "resume_id")
	}
	if i.SkillMatchScore == nil {
		fields = append(fields, "skill_match_score")
	}
	if i.ExperienceMatchScore == nil {
		fields = append(fields, "experience_match_score")
	}
	if i.OverallScore == nil {
		fields = append(fields, "overall_score")
	}
	if i.Summary == nil {
		fields = append(fields, "summary")
	}
	return fields
}

// Rank asks the model to score every candidate and returns one RankingScore
// per entry of the reply, in the order the model gave them. Any malformed
// entry fails the whole call.
func (r *Ranker) Rank(ctx context.Context, job JobPosting, candidates []CandidateProfile) ([]RankingScore, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyInput
	}

	log := logger.WithFields(r.logger, zap.String(logger.FieldJobID, job.JobID))

	prompt := BuildRankingPrompt(job, candidates)

	log.Debug("ranking request",
		zap.Int("candidates", len(candidates)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, r.opts.MaxLogLength)),
	)

	raw, err := r.completer.Complete(ctx, ai.Request{
		Prompt:      prompt,
		System:      jsonOnlyInstruction,
		MaxTokens:   r.opts.MaxTokens,
		Temperature: r.opts.Temperature,
	})
	if err != nil {
		return nil, err
	}

	log.Debug("ranking response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.opts.MaxLogLength)),
	)

	data, err := decodeObject(raw)
	if err != nil {
		log.Warn("ranking response is not parseable", zap.Error(err))
		return nil, err
	}

	if _, ok := data["rankings"]; !ok {
		log.Warn("ranking response has no rankings field, treating it as empty")
	}

	scores, err := reconcileRankings(data, raw, job.JobID)
	if err != nil {
		log.Warn("ranking response does not match schema", zap.Error(err))
		return nil, err
	}

	r.checkScores(log, scores, candidates)

	return scores, nil
}

// reconcileRankings turns the rankings array of a reply into RankingScore
// values. A reply without the field ranks nobody.
func reconcileRankings(data map[string]any, raw, jobID string) ([]RankingScore, error) {
	value, ok := data["rankings"]
	if !ok {
		return []RankingScore{}, nil
	}

	items, ok := value.([]any)
	if !ok {
		return nil, newResponseParseError(raw, fmt.Sprintf("rankings is %T, not a list", value), nil)
	}

	scores := make([]RankingScore, 0, len(items))
	for idx, entry := range items {
		var item rankingItem
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &item,
		})
		if err != nil {
			return nil, fmt.Errorf("create ranking decoder: %w", err)
		}

		if err := decoder.Decode(entry); err != nil {
			return nil, newResponseParseError(raw, fmt.Sprintf("rankings[%d] is malformed", idx), err)
		}

		if missing := item.missing(); len(missing) > 0 {
			return nil, newResponseParseError(raw, fmt.Sprintf("rankings[%d] is missing %v", idx, missing), nil)
		}

		id := *item.ResumeID
		if math.IsNaN(id) || math.IsInf(id, 0) || math.Trunc(id) != id ||
			id < math.MinInt32 || id > math.MaxInt32 {
			return nil, newResponseParseError(raw, fmt.Sprintf("rankings[%d].resume_id is not an integer", idx), nil)
		}

		for _, f := range []struct {
			name  string
			value float64
		}{
			{"skill_match_score", *item.SkillMatchScore},
			{"experience_match_score", *item.ExperienceMatchScore},
			{"overall_score", *item.OverallScore},
		} {
			if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
				return nil, newResponseParseError(raw, fmt.Sprintf("rankings[%d].%s is not a finite number", idx, f.name), nil)
			}
		}

		scores = append(scores, RankingScore{
			ResumeID:             int(id),
			JobID:                jobID,
			SkillMatchScore:      roundScore(*item.SkillMatchScore),
			ExperienceMatchScore: roundScore(*item.ExperienceMatchScore),
			OverallScore:         roundScore(*item.OverallScore),
			Summary:              *item.Summary,
		})
	}

	return scores, nil
}

// checkScores logs scores outside 0..100 and candidates the model skipped.
// Neither is corrected.
func (r *Ranker) checkScores(log *zap.Logger, scores []RankingScore, candidates []CandidateProfile) {
	seen := make(map[int]struct{}, len(scores))
	for _, s := range scores {
		seen[s.ResumeID] = struct{}{}
		for _, v := range []float64{s.SkillMatchScore, s.ExperienceMatchScore, s.OverallScore} {
			if v < minScore || v > maxScore {
				log.Warn("score out of range", zap.Int("resume_id", s.ResumeID), zap.Float64("score", v))
				break
			}
		}
	}

	for _, c := range candidates {
		if _, ok := seen[c.ResumeID]; !ok {
			log.Warn("candidate missing from ranking response", zap.Int("resume_id", c.ResumeID))
		}
	}
}
