package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/korag/internal/domain"
)

type mockGenerator struct {
	mu       sync.Mutex
	inFlight int
	maxSeen  int
	delay    time.Duration
	text     string
	err      error
}

func (m *mockGenerator) Generate(_ context.Context, _ string) (domain.GenerationResult, error) {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxSeen {
		m.maxSeen = m.inFlight
	}
	m.mu.Unlock()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()

	if m.err != nil {
		return domain.GenerationResult{}, m.err
	}
	return domain.GenerationResult{Text: m.text}, nil
}

type mockResources struct {
	gen domain.Generator
	err error
}

func (m *mockResources) Generator(_ context.Context) (domain.Generator, error) {
	return m.gen, m.err
}

func TestGenerate_ReturnsText(t *testing.T) {
	inv := NewInvoker(&mockResources{gen: &mockGenerator{text: "1945년입니다."}}, zap.NewNop())

	got, err := inv.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1945년입니다." {
		t.Errorf("unexpected text %q", got)
	}
}

func TestGenerate_SerializesCalls(t *testing.T) {
	gen := &mockGenerator{text: "ok", delay: 10 * time.Millisecond}
	inv := NewInvoker(&mockResources{gen: gen}, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := inv.Generate(context.Background(), "p"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if gen.maxSeen != 1 {
		t.Errorf("expected at most 1 in-flight generation, saw %d", gen.maxSeen)
	}
}

func TestGenerate_WrapsFailure(t *testing.T) {
	gen := &mockGenerator{err: errors.New("out of memory")}
	inv := NewInvoker(&mockResources{gen: gen}, zap.NewNop())

	_, err := inv.Generate(context.Background(), "p")
	if !errors.Is(err, domain.ErrGenerationFailure) {
		t.Fatalf("expected ErrGenerationFailure, got %v", err)
	}
}

func TestGenerate_MapsDeadlineToTimeout(t *testing.T) {
	gen := &mockGenerator{err: context.DeadlineExceeded}
	inv := NewInvoker(&mockResources{gen: gen}, zap.NewNop())

	_, err := inv.Generate(context.Background(), "p")
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestGenerate_ResourceErrorPropagates(t *testing.T) {
	res := &mockResources{err: domain.ErrResourceUnavailable}
	inv := NewInvoker(res, zap.NewNop())

	_, err := inv.Generate(context.Background(), "p")
	if !errors.Is(err, domain.ErrResourceUnavailable) {
		t.Fatalf("expected ErrResourceUnavailable, got %v", err)
	}
}
