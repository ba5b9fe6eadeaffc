package resolver

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/eryajf/qaloop/internal/llm"
	"github.com/eryajf/qaloop/internal/model"
)

type fakeCache struct {
	rows map[string]*model.Query
	gets int
	puts int
}

func newFakeCache() *fakeCache {
	return &fakeCache{rows: make(map[string]*model.Query)}
}

func (f *fakeCache) Get(ctx context.Context, question string) (*model.Query, bool) {
	f.gets++
	row, ok := f.rows[question]
	return row, ok
}

func (f *fakeCache) Put(ctx context.Context, question string, row *model.Query) {
	f.puts++
	f.rows[question] = row
}

type fakeStore struct {
	rows    map[string]*model.Query
	finds   int
	upserts int
	findErr error
	upErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]*model.Query)}
}

func (f *fakeStore) FindByTitle(ctx context.Context, question string) (*model.Query, error) {
	f.finds++
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.rows[question], nil
}

func (f *fakeStore) Upsert(ctx context.Context, row *model.Query) error {
	f.upserts++
	if f.upErr != nil {
		return f.upErr
	}
	f.rows[row.Title] = row
	return nil
}

type fakeGenerator struct {
	raw   string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.raw, f.err
}

func newTestResolver(c *fakeCache, s *fakeStore, g *fakeGenerator) *Resolver {
	return NewResolver(c, s, g, zap.NewNop().Sugar())
}

func TestResolveEmptyQuestion(t *testing.T) {
	c, s, g := newFakeCache(), newFakeStore(), &fakeGenerator{}
	r := newTestResolver(c, s, g)

	_, err := r.Resolve(context.Background(), "   \t ")
	if !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("err = %v, want ErrEmptyQuestion", err)
	}
	// 空输入不得触碰任何一级
	if c.gets != 0 || s.finds != 0 || g.calls != 0 {
		t.Errorf("tiers accessed on empty input: cache=%d store=%d gen=%d", c.gets, s.finds, g.calls)
	}
}

func TestResolveCacheWins(t *testing.T) {
	c, s, g := newFakeCache(), newFakeStore(), &fakeGenerator{}
	cached := &model.Query{Score: 4, Title: "Q?", Answer: "cached"}
	c.rows["Q?"] = cached
	s.rows["Q?"] = &model.Query{Score: 9, Title: "Q?", Answer: "stored"}

	res, err := newTestResolver(c, s, g).Resolve(context.Background(), "Q?")
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceCache {
		t.Errorf("source = %q, want cache", res.Source)
	}
	if res.Row.Answer != "cached" {
		t.Errorf("answer = %q, cache should win over store", res.Row.Answer)
	}
	if s.finds != 0 || g.calls != 0 {
		t.Error("cache hit must not consult later tiers")
	}
}

func TestResolveDBHitBackfillsCache(t *testing.T) {
	c, s, g := newFakeCache(), newFakeStore(), &fakeGenerator{}
	s.rows["Q?"] = &model.Query{Score: 6, Title: "Q?", Answer: "stored"}
	r := newTestResolver(c, s, g)

	res, err := r.Resolve(context.Background(), "Q?")
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceDB {
		t.Errorf("source = %q, want db", res.Source)
	}
	if c.puts != 1 {
		t.Errorf("cache puts = %d, want 1 (backfill on db hit)", c.puts)
	}

	// 第二次请求应命中缓存
	res, err = r.Resolve(context.Background(), "Q?")
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceCache {
		t.Errorf("second request source = %q, want cache", res.Source)
	}
}

func TestResolveGeneratorFallback(t *testing.T) {
	c, s := newFakeCache(), newFakeStore()
	g := &fakeGenerator{raw: "Here you go: [7, \"Q?\", null, \"A.\"] thanks"}
	r := newTestResolver(c, s, g)

	res, err := r.Resolve(context.Background(), " Q? ")
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceLLM {
		t.Errorf("source = %q, want llm", res.Source)
	}
	if res.Row.Score != 7 || res.Row.Answer != "A." {
		t.Errorf("unexpected row: %+v", res.Row)
	}
	if res.Row.Title != "Q?" {
		t.Errorf("title = %q, must be the trimmed input, not the generator echo", res.Row.Title)
	}
	if res.Row.Body != nil {
		t.Error("generator-resolved rows must have null body")
	}
	if s.upserts != 1 {
		t.Errorf("upserts = %d, want 1", s.upserts)
	}

	// 重复请求从缓存或持久层拿到,不再调用生成端
	res, err = r.Resolve(context.Background(), "Q?")
	if err != nil {
		t.Fatal(err)
	}
	if res.Source == SourceLLM {
		t.Error("repeat request should be served from cache or db")
	}
	if g.calls != 1 {
		t.Errorf("generator calls = %d, want 1", g.calls)
	}
}

func TestResolveMalformedOutputNoWrites(t *testing.T) {
	cases := []string{
		"sin corchetes",
		`[7, "Q?", null]`,
	}

	for _, raw := range cases {
		c, s := newFakeCache(), newFakeStore()
		g := &fakeGenerator{raw: raw}

		_, err := newTestResolver(c, s, g).Resolve(context.Background(), "Q?")
		if !errors.Is(err, llm.ErrMalformedPayload) {
			t.Errorf("raw %q: err = %v, want ErrMalformedPayload", raw, err)
		}
		if s.upserts != 0 || c.puts != 0 {
			t.Errorf("raw %q: writes happened after malformed output: upserts=%d puts=%d", raw, s.upserts, c.puts)
		}
	}
}

func TestResolveGeneratorTransportFailure(t *testing.T) {
	c, s := newFakeCache(), newFakeStore()
	g := &fakeGenerator{err: errors.New("connection refused")}

	_, err := newTestResolver(c, s, g).Resolve(context.Background(), "Q?")
	if !errors.Is(err, ErrGenerator) {
		t.Fatalf("err = %v, want ErrGenerator", err)
	}
	if s.upserts != 0 || c.puts != 0 {
		t.Error("no writes expected after generator failure")
	}
}

func TestResolveStoreFailureIsFatal(t *testing.T) {
	c, s := newFakeCache(), newFakeStore()
	s.findErr = errors.New("disk on fire")
	g := &fakeGenerator{raw: `[7, "Q?", null, "A."]`}

	if _, err := newTestResolver(c, s, g).Resolve(context.Background(), "Q?"); err == nil {
		t.Fatal("store read failure must be fatal")
	}
	if g.calls != 0 {
		t.Error("generator must not be called after store failure")
	}
}

func TestResolveUpsertFailureIsFatal(t *testing.T) {
	c, s := newFakeCache(), newFakeStore()
	s.upErr = errors.New("constraint violated")
	g := &fakeGenerator{raw: `[7, "Q?", null, "A."]`}

	if _, err := newTestResolver(c, s, g).Resolve(context.Background(), "Q?"); err == nil {
		t.Fatal("upsert failure must be fatal")
	}
	if c.puts != 0 {
		t.Error("cache must not be written when persistence failed")
	}
}
