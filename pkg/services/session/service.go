package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/agent"
	"github.com/dd-tools/databook/pkg/services/engine"
	"github.com/dd-tools/databook/pkg/services/fec"
	"github.com/dd-tools/databook/pkg/services/mapper"
)

// Service ties the registry to the ingestion pipeline: it persists uploads
// to disk, parses them, and rebuilds the session's analysis from the
// accumulated entry set.
type Service struct {
	registry  *Registry
	analyzer  *engine.Analyzer
	uploadDir string
	model     string
}

// NewService creates a session service writing uploads under uploadDir.
func NewService(registry *Registry, analyzer *engine.Analyzer, uploadDir, model string) *Service {
	return &Service{
		registry:  registry,
		analyzer:  analyzer,
		uploadDir: uploadDir,
		model:     model,
	}
}

// Mapper exposes the analyzer's classifier so detail and monthly views use
// the same account mapping as the statements.
func (s *Service) Mapper() *mapper.AccountMapper { return s.analyzer.Mapper() }

func (s *Service) Create() *Session          { return s.registry.Create() }
func (s *Service) Get(id string) (*Session, error) { return s.registry.Get(id) }
func (s *Service) Delete(id string)          { s.registry.Delete(id) }

// Ingest stores one uploaded FEC file, parses it and reprocesses the
// session with every entry seen so far. The parse result is returned even
// when rows were rejected; only a failed parse aborts the ingest.
func (s *Service) Ingest(ctx context.Context, id, filename string, r io.Reader) (*fec.ParseResult, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	name := fec.SanitizeFilename(filename)
	dir := filepath.Join(s.uploadDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	result, err := fec.NewParser(path).Parse()
	if err != nil {
		return nil, err
	}

	// Build a fresh slice so concurrent readers of the previous snapshot
	// never see their backing array change.
	entries := make([]domain.JournalEntry, 0, len(sess.Entries)+len(result.Entries))
	entries = append(entries, sess.Entries...)
	entries = append(entries, result.Entries...)
	analysis := s.analyzer.Run(ctx, entries)
	if err := s.registry.Update(id, name, entries, analysis); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("session", id).
		Str("file", name).
		Int("parsed", len(result.Entries)).
		Int("rejected", len(result.Errors)).
		Msg("file ingested")

	return result, nil
}

// Agent returns the tool facade for a processed session.
func (s *Service) Agent(id string) (*agent.DealAgent, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.Analysis == nil {
		return nil, fmt.Errorf("session %s has no processed data", id)
	}
	return agent.NewDealAgent(sess.Analysis), nil
}

// Ask routes a free-form question through the assistant.
func (s *Service) Ask(ctx context.Context, id, question string) (string, error) {
	dealAgent, err := s.Agent(id)
	if err != nil {
		return "", err
	}
	return agent.NewAssistant(dealAgent, s.model).Ask(ctx, question)
}
