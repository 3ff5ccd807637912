package screening

import (
	"context"

	"github.com/spigell/resume-rank/internal/ai"
)

type stubCompleter struct {
	response string
	err      error
	calls    int
	last     ai.Request
}

func (s *stubCompleter) Complete(_ context.Context, req ai.Request) (string, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type stubStore struct {
	data   []byte
	err    error
	calls  int
	bucket string
	key    string
}

func (s *stubStore) Download(_ context.Context, bucket, key string) ([]byte, error) {
	s.calls++
	s.bucket = bucket
	s.key = key
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

type stubText struct {
	text string
	err  error
	name string
}

func (s *stubText) Extract(_ context.Context, name string, _ []byte) (string, error) {
	s.name = name
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func strPtr(s string) *string {
	return &s
}
