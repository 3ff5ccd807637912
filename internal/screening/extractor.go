package screening

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-rank/internal/ai"
	"github.com/spigell/resume-rank/internal/document"
	"github.com/spigell/resume-rank/internal/logger"
	"github.com/spigell/resume-rank/internal/storage"
	"github.com/spigell/resume-rank/internal/utils"
)

const (
	defaultExtractMaxTokens = 1024
	defaultRankMaxTokens    = 4096
	defaultMaxLogLength     = 200

	// storageProvider names the object store in ProviderError values.
	storageProvider = "s3"
)

// ObjectStore fetches raw document bytes. An empty bucket means the store's
// default bucket.
type ObjectStore interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// TextExtractor converts document bytes into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, name string, data []byte) (string, error)
}

// Options tunes the model requests of an Extractor or Ranker.
type Options struct {
	MaxTokens    int
	Temperature  float64
	MaxLogLength int
}

func (o Options) withDefaults(maxTokens int) Options {
	if o.MaxTokens <= 0 {
		o.MaxTokens = maxTokens
	}
	if o.MaxLogLength <= 0 {
		o.MaxLogLength = defaultMaxLogLength
	}
	return o
}

// Extractor turns stored resume documents into ParsedResume values.
type Extractor struct {
	store     ObjectStore
	text      TextExtractor
	completer ai.Completer
	opts      Options
	logger    *zap.Logger
}

func NewExtractor(store ObjectStore, text TextExtractor, completer ai.Completer, opts Options, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{
		store:     store,
		text:      text,
		completer: completer,
		opts:      opts.withDefaults(defaultExtractMaxTokens),
		logger:    log,
	}
}

// Extract fetches the document behind fileRef, a bare key or s3://bucket/key,
// and asks the model for a structured profile. The extension is checked
// before anything is fetched. Documents without text never reach the model.
func (e *Extractor) Extract(ctx context.Context, fileRef string) (*ParsedResume, error) {
	loc, err := storage.Resolve(fileRef)
	if err != nil {
		return nil, err
	}

	if _, err := document.KindOf(loc.Key); err != nil {
		return nil, err
	}

	log := logger.WithFields(e.logger, zap.String(logger.FieldFileRef, fileRef))

	data, err := e.store.Download(ctx, loc.Bucket, loc.Key)
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			kind := ai.KindThrottled
			if errors.Is(err, context.DeadlineExceeded) {
				kind = ai.KindTimeout
			}
			return nil, ai.NewProviderError(storageProvider, kind, fmt.Errorf("download %s: %w", fileRef, err))
		}
		return nil, fmt.Errorf("download %s: %w", fileRef, err)
	}

	text, err := e.text.Extract(ctx, loc.Key, data)
	if err != nil {
		return nil, fmt.Errorf("extract text from %s: %w", fileRef, err)
	}

	if strings.TrimSpace(text) == "" {
		log.Info("document has no text, skipping model call")
		return emptyResume(loc.Key), nil
	}

	prompt := BuildExtractionPrompt(text)

	log.Debug("extraction request",
		zap.Int("text_length", utf8.RuneCountInString(text)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.opts.MaxLogLength)),
	)

	raw, err := e.completer.Complete(ctx, ai.Request{
		Prompt:      prompt,
		System:      jsonOnlyInstruction,
		MaxTokens:   e.opts.MaxTokens,
		Temperature: e.opts.Temperature,
	})
	if err != nil {
		return nil, err
	}

	log.Debug("extraction response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.opts.MaxLogLength)),
	)

	parsed, err := decodeObject(raw)
	if err != nil {
		log.Warn("extraction response is not parseable", zap.Error(err))
		return nil, err
	}

	return reconcileResume(parsed, loc.Key), nil
}

func fileStem(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base))
}

func emptyResume(key string) *ParsedResume {
	unknown := ExperienceUnknown
	return &ParsedResume{
		CandidateName:   strings.ReplaceAll(fileStem(key), "_", " "),
		Skills:          []string{},
		ExperienceLevel: &unknown,
		SuitableRoles:   []SuitableRole{},
	}
}

// reconcileResume fills a ParsedResume from the decoded reply, defaulting
// whatever the model left out.
func reconcileResume(data map[string]any, key string) *ParsedResume {
	resume := &ParsedResume{
		CandidateName: fileStem(key),
		Skills:        []string{},
		SuitableRoles: []SuitableRole{},
	}

	if name := coerceString(data["candidate_name"]); name != "" {
		resume.CandidateName = name
	}

	if raw, ok := data["skills"]; ok {
		resume.Skills = coerceStrings(raw)
	}

	raw, ok := data["experience_level"]
	switch {
	case !ok:
		unknown := ExperienceUnknown
		resume.ExperienceLevel = &unknown
	case raw != nil:
		level := coerceString(raw)
		resume.ExperienceLevel = &level
	}

	if raw, ok := data["summary"]; ok && raw != nil {
		summary := coerceString(raw)
		resume.Summary = &summary
	}

	if raw, ok := data["suitable_roles"]; ok {
		resume.SuitableRoles = normalizeRoles(raw)
	}

	return resume
}
