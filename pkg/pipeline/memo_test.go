package pipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// countingMorph counts transform invocations so cache behavior is
// observable.
func countingMorph(name string, calls *atomic.Int64, meta Metadata) *Morph {
	return MustMorph(name, func(_ context.Context, s Shape, rc RunContext) (Shape, error) {
		calls.Add(1)
		suffix, _ := rc.String("suffix")
		text, _ := s.StringField("text")
		return s.SetField("text", text+suffix), nil
	}, meta)
}

func memoPipeline(t *testing.T, m *Morph) (*Pipeline, *MemoCache) {
	t.Helper()
	cache, err := NewMemoCache(1024)
	if err != nil {
		t.Fatalf("NewMemoCache: %v", err)
	}
	t.Cleanup(cache.Close)

	p, err := NewPipeline("memo").Pipe(m).Build(Meta{}, WithMemo(cache))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return p, cache
}

func TestMemo_HitSkipsRecomputation(t *testing.T) {
	var calls atomic.Int64
	m := countingMorph("suffixer", &calls, Metadata{
		Pure: true, Memoizable: true, MemoKeys: []string{"suffix"}, Cost: 1,
	})
	p, cache := memoPipeline(t, m)

	rc := NewRunContext(map[string]any{"suffix": "!"})
	in := textShape("a")

	first, err := p.Run(context.Background(), in, rc)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	cache.Wait() // ristretto admits writes asynchronously

	second, err := p.Run(context.Background(), in, rc)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("transform ran %d times, want 1", got)
	}
	if !first.Equal(second) {
		t.Errorf("cached result differs: %v vs %v", first, second)
	}
}

func TestMemo_DifferentShapeMisses(t *testing.T) {
	var calls atomic.Int64
	m := countingMorph("suffixer", &calls, Metadata{
		Pure: true, Memoizable: true, MemoKeys: []string{"suffix"},
	})
	p, cache := memoPipeline(t, m)

	rc := NewRunContext(map[string]any{"suffix": "!"})
	if _, err := p.Run(context.Background(), textShape("a"), rc); err != nil {
		t.Fatal(err)
	}
	cache.Wait()
	if _, err := p.Run(context.Background(), textShape("b"), rc); err != nil {
		t.Fatal(err)
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("transform ran %d times, want 2 (different shapes must miss)", got)
	}
}

func TestMemo_DeclaredContextKeyChangesKey(t *testing.T) {
	var calls atomic.Int64
	m := countingMorph("suffixer", &calls, Metadata{
		Pure: true, Memoizable: true, MemoKeys: []string{"suffix"},
	})
	p, cache := memoPipeline(t, m)

	in := textShape("a")
	out1, err := p.Run(context.Background(), in, NewRunContext(map[string]any{"suffix": "!"}))
	if err != nil {
		t.Fatal(err)
	}
	cache.Wait()
	out2, err := p.Run(context.Background(), in, NewRunContext(map[string]any{"suffix": "?"}))
	if err != nil {
		t.Fatal(err)
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("transform ran %d times, want 2 (declared key changed)", got)
	}
	if t1, _ := out1.StringField("text"); t1 != "a!" {
		t.Errorf("out1 = %q, want a!", t1)
	}
	if t2, _ := out2.StringField("text"); t2 != "a?" {
		t.Errorf("out2 = %q, want a?", t2)
	}
}

func TestMemo_UndeclaredContextKeyIsIgnored(t *testing.T) {
	var calls atomic.Int64
	m := countingMorph("suffixer", &calls, Metadata{
		Pure: true, Memoizable: true, MemoKeys: []string{"suffix"},
	})
	p, cache := memoPipeline(t, m)

	in := textShape("a")
	if _, err := p.Run(context.Background(), in, NewRunContext(map[string]any{"suffix": "!", "noise": 1})); err != nil {
		t.Fatal(err)
	}
	cache.Wait()
	if _, err := p.Run(context.Background(), in, NewRunContext(map[string]any{"suffix": "!", "noise": 2})); err != nil {
		t.Fatal(err)
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("transform ran %d times, want 1 (undeclared key must not split the cache)", got)
	}
}

func TestMemo_DistinctInputsNeverShareInFlightComputation(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	m := MustMorph("slow", func(_ context.Context, s Shape, _ RunContext) (Shape, error) {
		started <- struct{}{}
		<-release
		text, _ := s.StringField("text")
		return s.SetField("text", text+"!"), nil
	}, Metadata{Pure: true, Memoizable: true})
	p, _ := memoPipeline(t, m)

	type result struct {
		text string
		err  error
	}
	results := make(chan result, 2)
	for _, text := range []string{"a", "b"} {
		go func(text string) {
			out, err := p.Run(context.Background(), textShape(text), NewRunContext(nil))
			got, _ := out.StringField("text")
			results <- result{got, err}
		}(text)
	}

	// Both transforms must be in flight at once: the in-flight
	// collapse is keyed on the full input, so distinct inputs may
	// never be handed one another's output.
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(5 * time.Second):
			t.Fatal("second computation never started; distinct inputs were collapsed")
		}
	}
	close(release)

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err != nil {
			t.Fatalf("Run: %v", r.err)
		}
		got[r.text] = true
	}
	if !got["a!"] || !got["b!"] {
		t.Errorf("results = %v, want both a! and b!", got)
	}
}

func TestMemo_NonMemoizableMorphBypassesCache(t *testing.T) {
	var calls atomic.Int64
	m := countingMorph("plain", &calls, Metadata{Pure: true})
	p, cache := memoPipeline(t, m)

	rc := NewRunContext(map[string]any{"suffix": "!"})
	for i := 0; i < 3; i++ {
		if _, err := p.Run(context.Background(), textShape("a"), rc); err != nil {
			t.Fatal(err)
		}
		cache.Wait()
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("transform ran %d times, want 3 (not memoizable)", got)
	}
}

func TestMemo_HitReturnsIsolatedCopy(t *testing.T) {
	var calls atomic.Int64
	m := countingMorph("suffixer", &calls, Metadata{
		Pure: true, Memoizable: true, MemoKeys: []string{"suffix"},
	})
	p, cache := memoPipeline(t, m)

	rc := NewRunContext(map[string]any{"suffix": "!"})
	out, err := p.Run(context.Background(), textShape("a"), rc)
	if err != nil {
		t.Fatal(err)
	}
	cache.Wait()

	// Corrupting a returned shape must not poison later hits.
	out.Fields["text"] = "corrupted"

	again, err := p.Run(context.Background(), textShape("a"), rc)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := again.StringField("text"); got != "a!" {
		t.Errorf("cache poisoned: text = %q, want a!", got)
	}
}

func TestMemo_MetadataRequiresPure(t *testing.T) {
	_, err := NewMorph("bad", func(_ context.Context, s Shape, _ RunContext) (Shape, error) {
		return s, nil
	}, Metadata{Memoizable: true})
	if err == nil {
		t.Fatal("expected error: memoizable requires pure")
	}
}
