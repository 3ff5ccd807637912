package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/resume-rank/internal/ai"
	"github.com/spigell/resume-rank/internal/storage"
)

func newTestExtractor(store *stubStore, text *stubText, completer *stubCompleter) *Extractor {
	return NewExtractor(store, text, completer, Options{}, zap.NewNop())
}

func TestExtractReconcilesReply(t *testing.T) {
	store := &stubStore{data: []byte("pdf bytes")}
	text := &stubText{text: "Jane Doe\nSenior Go developer, 9 years"}
	completer := &stubCompleter{response: `Sure! {"candidate_name": "Jane Doe", "skills": ["Go", "Kubernetes"],
		"experience_level": "Senior", "summary": "Seasoned engineer.",
		"suitable_roles": ["Backend Engineer", {"role": "Staff Engineer", "score": 8}]}`}

	resume, err := newTestExtractor(store, text, completer).Extract(context.Background(), "s3://cvs/uploads/jane_doe.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.bucket != "cvs" || store.key != "uploads/jane_doe.pdf" {
		t.Fatalf("unexpected download location: %q %q", store.bucket, store.key)
	}

	if resume.CandidateName != "Jane Doe" {
		t.Fatalf("unexpected name: %q", resume.CandidateName)
	}

	if strings.Join(resume.Skills, ",") != "Go,Kubernetes" {
		t.Fatalf("unexpected skills: %v", resume.Skills)
	}

	if resume.ExperienceLevel == nil || *resume.ExperienceLevel != "Senior" {
		t.Fatalf("unexpected experience level: %v", resume.ExperienceLevel)
	}

	if resume.Summary == nil || *resume.Summary != "Seasoned engineer." {
		t.Fatalf("unexpected summary: %v", resume.Summary)
	}

	want := []SuitableRole{{Role: "Staff Engineer", Score: 8}, {Role: "Backend Engineer", Score: 5}}
	if len(resume.SuitableRoles) != len(want) {
		t.Fatalf("unexpected roles: %+v", resume.SuitableRoles)
	}
	for i := range want {
		if resume.SuitableRoles[i] != want[i] {
			t.Fatalf("role %d: expected %+v, got %+v", i, want[i], resume.SuitableRoles[i])
		}
	}

	if completer.last.MaxTokens != defaultExtractMaxTokens {
		t.Fatalf("expected %d max tokens, got %d", defaultExtractMaxTokens, completer.last.MaxTokens)
	}

	if completer.last.Temperature != 0 {
		t.Fatalf("expected zero temperature, got %v", completer.last.Temperature)
	}

	if completer.last.System == "" {
		t.Fatalf("expected system instruction")
	}

	if !strings.Contains(completer.last.Prompt, "Senior Go developer, 9 years") {
		t.Fatalf("expected document text in prompt")
	}
}

func TestExtractDefaultsMissingFields(t *testing.T) {
	store := &stubStore{data: []byte("docx bytes")}
	text := &stubText{text: "some text"}
	completer := &stubCompleter{response: `{}`}

	resume, err := newTestExtractor(store, text, completer).Extract(context.Background(), "uploads/john_smith.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.bucket != "" {
		t.Fatalf("expected default bucket for bare key, got %q", store.bucket)
	}

	if resume.CandidateName != "john_smith" {
		t.Fatalf("expected raw file stem as name, got %q", resume.CandidateName)
	}

	if resume.Skills == nil || len(resume.Skills) != 0 {
		t.Fatalf("expected empty skills, got %#v", resume.Skills)
	}

	if resume.ExperienceLevel == nil || *resume.ExperienceLevel != ExperienceUnknown {
		t.Fatalf("expected Unknown experience level, got %v", resume.ExperienceLevel)
	}

	if resume.Summary != nil {
		t.Fatalf("expected nil summary, got %q", *resume.Summary)
	}

	if resume.SuitableRoles == nil || len(resume.SuitableRoles) != 0 {
		t.Fatalf("expected empty roles, got %#v", resume.SuitableRoles)
	}
}

func TestExtractKeepsExplicitNullExperience(t *testing.T) {
	completer := &stubCompleter{response: `{"candidate_name": "A", "experience_level": null, "summary": null}`}

	resume, err := newTestExtractor(&stubStore{}, &stubText{text: "x"}, completer).Extract(context.Background(), "a.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resume.ExperienceLevel != nil {
		t.Fatalf("expected nil experience level, got %q", *resume.ExperienceLevel)
	}

	if resume.Summary != nil {
		t.Fatalf("expected nil summary")
	}
}

func TestExtractEmptyTextSkipsModel(t *testing.T) {
	for _, text := range []string{"", "   \n\t "} {
		completer := &stubCompleter{response: `{"candidate_name": "should not be used"}`}

		resume, err := newTestExtractor(&stubStore{}, &stubText{text: text}, completer).Extract(context.Background(), "s3://bucket/resumes/mary_ann_lee.pdf")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if completer.calls != 0 {
			t.Fatalf("expected no model invocations, got %d", completer.calls)
		}

		if resume.CandidateName != "mary ann lee" {
			t.Fatalf("unexpected name: %q", resume.CandidateName)
		}

		if len(resume.Skills) != 0 || len(resume.SuitableRoles) != 0 || resume.Summary != nil {
			t.Fatalf("expected empty defaults, got %+v", resume)
		}

		if resume.ExperienceLevel == nil || *resume.ExperienceLevel != ExperienceUnknown {
			t.Fatalf("expected Unknown experience level")
		}
	}
}

func TestExtractUnsupportedFormatSkipsFetch(t *testing.T) {
	store := &stubStore{}
	completer := &stubCompleter{}

	_, err := newTestExtractor(store, &stubText{}, completer).Extract(context.Background(), "resumes/notes.txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	if err.Error() != "unsupported file type: .txt" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	if store.calls != 0 || completer.calls != 0 {
		t.Fatalf("expected no fetch and no model call, got %d and %d", store.calls, completer.calls)
	}
}

func TestExtractUppercaseExtension(t *testing.T) {
	completer := &stubCompleter{response: `{"candidate_name": "X"}`}

	if _, err := newTestExtractor(&stubStore{}, &stubText{text: "x"}, completer).Extract(context.Background(), "CV.PDF"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractNotFound(t *testing.T) {
	store := &stubStore{err: storage.ErrNotFound}

	_, err := newTestExtractor(store, &stubText{}, &stubCompleter{}).Extract(context.Background(), "missing.pdf")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExtractStorageUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ai.Kind
	}{
		{name: "throttled", err: fmt.Errorf("failed to download file: %w: %w", storage.ErrUnavailable, errors.New("SlowDown")), kind: ai.KindThrottled},
		{name: "timed out", err: fmt.Errorf("failed to download file: %w: %w", storage.ErrUnavailable, context.DeadlineExceeded), kind: ai.KindTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &stubCompleter{}

			_, err := newTestExtractor(&stubStore{err: tt.err}, &stubText{}, completer).Extract(context.Background(), "a.pdf")

			var perr *ai.ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ProviderError, got %v", err)
			}
			if perr.Kind != tt.kind {
				t.Fatalf("expected kind %s, got %s", tt.kind, perr.Kind)
			}
			if !errors.Is(err, storage.ErrUnavailable) {
				t.Fatalf("expected storage cause to be kept, got %v", err)
			}
			if completer.calls != 0 {
				t.Fatalf("expected no model call")
			}
		})
	}
}

func TestExtractInvalidURI(t *testing.T) {
	store := &stubStore{}

	_, err := newTestExtractor(store, &stubText{}, &stubCompleter{}).Extract(context.Background(), "s3://bucket-only")
	if !errors.Is(err, storage.ErrInvalidURI) {
		t.Fatalf("expected ErrInvalidURI, got %v", err)
	}

	if store.calls != 0 {
		t.Fatalf("expected no fetch")
	}
}

func TestExtractProviderFailure(t *testing.T) {
	completer := &stubCompleter{err: ai.NewProviderError("stub", ai.KindThrottled, errors.New("slow down"))}

	_, err := newTestExtractor(&stubStore{}, &stubText{text: "x"}, completer).Extract(context.Background(), "a.pdf")
	if !errors.Is(err, ai.ErrInvocationFailed) {
		t.Fatalf("expected ErrInvocationFailed, got %v", err)
	}
}

func TestExtractUnparseableReply(t *testing.T) {
	completer := &stubCompleter{response: "no json here"}

	_, err := newTestExtractor(&stubStore{}, &stubText{text: "x"}, completer).Extract(context.Background(), "a.pdf")
	if !errors.Is(err, ErrResponseParse) {
		t.Fatalf("expected ErrResponseParse, got %v", err)
	}
}
