package services

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/dmitrijs2005/qaboard/internal/server/mailer"
)

type fakeStore struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func (s *fakeStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	if s.err != nil {
		return s.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[name] = buf.Bytes()
	return nil
}

type fakeMailer struct {
	sent []mailer.Email
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, e mailer.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, e)
	return nil
}
