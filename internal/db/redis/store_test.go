package redis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/ragchat/internal/db"
	"github.com/kailas-cloud/ragchat/internal/domain/filter"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c, FlavorRedis)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, FlavorRedis)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

// --- hash.go tests ---

func TestHSetMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(2)),
			mock.Result(mock.RedisInt64(2)),
		})

	s := NewStoreForTest(c, FlavorRedis)
	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: "k1", Fields: map[string]string{"f1": "v1"}},
		{Key: "k2", Fields: map[string]string{"f2": "v2"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSetMulti_Empty(t *testing.T) {
	s := NewStoreForTest(nil, FlavorRedis)
	if err := s.HSetMulti(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSetAtomic_WrapsInMultiExec(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var sent [][]string
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmds ...rueidis.Completed) []rueidis.RedisResult {
			for _, cmd := range cmds {
				sent = append(sent, cmd.Commands())
			}
			return []rueidis.RedisResult{
				mock.Result(mock.RedisString("OK")),
				mock.Result(mock.RedisString("QUEUED")),
				mock.Result(mock.RedisString("QUEUED")),
				mock.Result(mock.RedisArray(mock.RedisInt64(4), mock.RedisInt64(4))),
			}
		})

	s := NewStoreForTest(c, FlavorRedis)
	err := s.HSetAtomic(context.Background(), []db.HashSetItem{
		{Key: "ragchat:knowledge:a", Fields: map[string]string{"content": "x"}},
		{Key: "ragchat:knowledge:b", Fields: map[string]string{"content": "y"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sent) != 4 {
		t.Fatalf("expected 4 commands, got %d", len(sent))
	}
	if sent[0][0] != "MULTI" || sent[3][0] != "EXEC" {
		t.Errorf("expected MULTI ... EXEC, got %v ... %v", sent[0], sent[3])
	}
	if sent[1][0] != "HSET" || sent[1][1] != "ragchat:knowledge:a" {
		t.Errorf("unexpected first queued command: %v", sent[1])
	}
}

func TestHSetAtomic_Aborted(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisString("QUEUED")),
			mock.Result(mock.RedisNil()),
		})

	s := NewStoreForTest(c, FlavorRedis)
	err := s.HSetAtomic(context.Background(), []db.HashSetItem{
		{Key: "k", Fields: map[string]string{"f": "v"}},
	})
	if !errors.Is(err, db.ErrTxAborted) {
		t.Fatalf("expected ErrTxAborted, got %v", err)
	}
}

func TestHSetAtomic_QueueError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisError("ERR wrong number of arguments")),
			mock.Result(mock.RedisError("EXECABORT Transaction discarded")),
		})

	s := NewStoreForTest(c, FlavorRedis)
	err := s.HSetAtomic(context.Background(), []db.HashSetItem{
		{Key: "bad", Fields: map[string]string{}},
	})
	if err == nil || !strings.Contains(err.Error(), "key bad") {
		t.Fatalf("expected error naming key, got %v", err)
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestHGetAll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "mykey")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			"source":   mock.RedisString("nepal.docx"),
			"category": mock.RedisString("country"),
		})))

	s := NewStoreForTest(c, FlavorRedis)
	m, err := s.HGetAll(context.Background(), "mykey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["source"] != "nepal.docx" || m["category"] != "country" {
		t.Errorf("unexpected map: %v", m)
	}
}

func TestHGetAll_Missing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "gone")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})))

	s := NewStoreForTest(c, FlavorRedis)
	if _, err := s.HGetAll(context.Background(), "gone"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestHGetAllMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"f": mock.RedisString("a"),
			})),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"f": mock.RedisString("b"),
			})),
		})

	s := NewStoreForTest(c, FlavorRedis)
	results, err := s.HGetAllMulti(context.Background(), []string{"k1", "k2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0]["f"] != "a" || results[1]["f"] != "b" {
		t.Errorf("unexpected results: %v", results)
	}
}

func TestDel_MultipleKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "k1", "k2")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c, FlavorRedis)
	n, err := s.Del(context.Background(), "k1", "k2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
}

func TestDel_NoKeys(t *testing.T) {
	s := NewStoreForTest(nil, FlavorRedis)
	n, err := s.Del(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Del() = %d, %v", n, err)
	}
}

func TestScan_MultiPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	first := true
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN"
		})).
		DoAndReturn(func(_ context.Context, _ rueidis.Completed) rueidis.RedisResult {
			if first {
				first = false
				return mock.Result(mock.RedisArray(
					mock.RedisInt64(42), // cursor=42 means more
					mock.RedisArray(mock.RedisString("key1")),
				))
			}
			return mock.Result(mock.RedisArray(
				mock.RedisInt64(0), // cursor=0 means done
				mock.RedisArray(mock.RedisString("key2")),
			))
		}).Times(2)

	s := NewStoreForTest(c, FlavorRedis)
	keys, err := s.Scan(context.Background(), "prefix:*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
}

// --- kv.go tests ---

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "missing")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c, FlavorRedis)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "k")).
		Return(mock.Result(mock.RedisString("\x00\x01")))

	s := NewStoreForTest(c, FlavorRedis)
	data, err := s.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 2 || data[1] != 1 {
		t.Errorf("unexpected data: %v", data)
	}
}

func TestSetWithTTL_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SET" && cmd[1] == "k" && cmd[3] == "EX"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c, FlavorRedis)
	if err := s.SetWithTTL(context.Background(), "k", []byte("v"), 60e9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- index.go tests ---

func testIndexDef() *db.IndexDefinition {
	return db.NewIndex("ragchat:knowledge:idx").
		Prefix("ragchat:knowledge:").
		Tag("source", "category", "title").
		VectorHNSW("vector", 384, db.DistanceCosine, 16, 200).
		MustBuild()
}

func TestCreateIndex_Args(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var got []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		DoAndReturn(func(_ context.Context, cmd rueidis.Completed) rueidis.RedisResult {
			got = cmd.Commands()
			return mock.Result(mock.RedisString("OK"))
		})

	s := NewStoreForTest(c, FlavorRedis)
	if err := s.CreateIndex(context.Background(), testIndexDef()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(got, " ")
	for _, want := range []string{
		"FT.CREATE ragchat:knowledge:idx ON HASH PREFIX 1 ragchat:knowledge: SCHEMA",
		"source TAG SEPARATOR | CASESENSITIVE",
		"vector VECTOR HNSW 10 TYPE FLOAT32 DIM 384 DISTANCE_METRIC COSINE M 16 EF_CONSTRUCTION 200",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in %q", want, joined)
		}
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c, FlavorRedis)
	if err := s.CreateIndex(context.Background(), testIndexDef()); !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestCreateIndex_Invalid(t *testing.T) {
	s := NewStoreForTest(nil, FlavorRedis)
	if err := s.CreateIndex(context.Background(), &db.IndexDefinition{Name: "x"}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDropIndex_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "test:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c, FlavorRedis)
	if err := s.DropIndex(context.Background(), "test:idx"); !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestIndexInfo_NumDocs(t *testing.T) {
	tests := []struct {
		name  string
		value rueidis.RedisMessage
		want  int
	}{
		{"int", mock.RedisInt64(7), 7},
		{"string", mock.RedisString("12"), 12},
		{"float string", mock.RedisString("3.0"), 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)

			c.EXPECT().
				Do(gomock.Any(), mock.Match("FT.INFO", "idx")).
				Return(mock.Result(mock.RedisArray(
					mock.RedisString("index_name"), mock.RedisString("idx"),
					mock.RedisString("num_docs"), tc.value,
				)))

			s := NewStoreForTest(c, FlavorRedis)
			info, err := s.IndexInfo(context.Background(), "idx")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if info.NumDocs != tc.want {
				t.Errorf("NumDocs = %d, want %d", info.NumDocs, tc.want)
			}
		})
	}
}

func TestIndexExists_False(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "test:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c, FlavorRedis)
	exists, err := s.IndexExists(context.Background(), "test:idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected false")
	}
}

func TestIndexExists_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "test:idx")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, FlavorRedis)
	if _, err := s.IndexExists(context.Background(), "test:idx"); !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

// --- search.go tests ---

func TestSearchKNN_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var got []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		DoAndReturn(func(_ context.Context, cmd rueidis.Completed) rueidis.RedisResult {
			got = cmd.Commands()
			return mock.Result(mock.RedisArray(
				mock.RedisInt64(1), // total
				mock.RedisString("ragchat:knowledge:1"),
				mock.RedisArray(
					mock.RedisString("__vector_score"),
					mock.RedisString("0.1"),
					mock.RedisString("content"),
					mock.RedisString("hello"),
				),
			))
		})

	s := NewStoreForTest(c, FlavorRedis)
	cond, _ := filter.NewMatch("source", "technology.pdf")
	expr, _ := filter.NewExpression([]filter.Condition{cond}, nil, nil)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "idx",
		Filters:   expr,
		Vector:    []float32{0.1, 0.2},
		K:         5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[2] != `(@source:{technology\.pdf})=>[KNN 5 @vector $BLOB]` {
		t.Errorf("unexpected query %q", got[2])
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.Entries))
	}
	e := result.Entries[0]
	// cosine distance 0.1 maps to similarity 0.9
	if e.Score < 0.89 || e.Score > 0.91 {
		t.Errorf("expected score ~0.9, got %f", e.Score)
	}
	if _, ok := e.Fields["__vector_score"]; ok {
		t.Error("__vector_score should be stripped from fields")
	}
}

func TestSearchKNN_NegativeSimilarity(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("k"),
			mock.RedisArray(mock.RedisString("__vector_score"), mock.RedisString("1.5")),
		)))

	s := NewStoreForTest(c, FlavorRedis)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{IndexName: "idx", Vector: []float32{1}, K: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Entries[0].Score != -0.5 {
		t.Errorf("expected -0.5, got %f", result.Entries[0].Score)
	}
}

func TestSearchKNN_Validation(t *testing.T) {
	s := &Store{}
	ctx := context.Background()

	if _, err := s.SearchKNN(ctx, &db.KNNQuery{Vector: []float32{0.1}, K: 10}); err == nil {
		t.Error("expected error for empty index name")
	}
	if _, err := s.SearchKNN(ctx, &db.KNNQuery{IndexName: "idx", K: 10}); err == nil {
		t.Error("expected error for empty vector")
	}
	if _, err := s.SearchKNN(ctx, &db.KNNQuery{IndexName: "idx", Vector: []float32{0.1}, K: 0}); err == nil {
		t.Error("expected error for k=0")
	}
}

func TestSearchList_Redis(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[2] == "*" && cmd[3] == "LIMIT"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("doc:1"),
			mock.RedisArray(mock.RedisString("f"), mock.RedisString("v1")),
			mock.RedisString("doc:2"),
			mock.RedisArray(mock.RedisString("f"), mock.RedisString("v2")),
		)))

	s := NewStoreForTest(c, FlavorRedis)
	result, err := s.SearchList(context.Background(), &db.ListQuery{IndexName: "idx", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 || len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", result)
	}
}

func TestSearchList_ValkeyScans(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(0),
			mock.RedisArray(mock.RedisString("p:b"), mock.RedisString("p:a"), mock.RedisString("p:c")),
		)))
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"source": mock.RedisString("x.pdf"), "content": mock.RedisString("A"),
			})),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"source": mock.RedisString("y.pdf"), "content": mock.RedisString("B"),
			})),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"source": mock.RedisString("x.pdf"), "content": mock.RedisString("C"),
			})),
		})

	s := NewStoreForTest(c, FlavorValkey)
	expr, _ := filter.BySource("x.pdf")
	result, err := s.SearchList(context.Background(), &db.ListQuery{
		IndexName:    "idx",
		KeyPrefix:    "p:",
		Filters:      expr,
		Limit:        10,
		ReturnFields: []string{"content"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected 2 matches, got %d", result.Total)
	}
	if result.Entries[0].Key != "p:a" || result.Entries[1].Key != "p:c" {
		t.Errorf("expected sorted keys p:a, p:c, got %s, %s", result.Entries[0].Key, result.Entries[1].Key)
	}
	if _, ok := result.Entries[0].Fields["source"]; ok {
		t.Error("expected only returned fields")
	}
}

func TestSearchList_ValkeyRequiresPrefix(t *testing.T) {
	s := NewStoreForTest(nil, FlavorValkey)
	if _, err := s.SearchList(context.Background(), &db.ListQuery{IndexName: "idx", Limit: 1}); err == nil {
		t.Fatal("expected error without key prefix")
	}
}

func TestSearchCount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[2] == "@category:{country}"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(42))))

	s := NewStoreForTest(c, FlavorRedis)
	cond, _ := filter.NewMatch("category", "country")
	expr, _ := filter.NewExpression([]filter.Condition{cond}, nil, nil)
	count, err := s.SearchCount(context.Background(), &db.ListQuery{IndexName: "idx", Filters: expr})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Errorf("expected 42, got %d", count)
	}
}

// --- Filter building tests ---

func TestBuildFilter(t *testing.T) {
	m := func(k, v string) filter.Condition {
		c, err := filter.NewMatch(k, v)
		if err != nil {
			t.Fatalf("NewMatch: %v", err)
		}
		return c
	}

	tests := []struct {
		name                 string
		must, should, mustNo []filter.Condition
		want                 string
	}{
		{"empty", nil, nil, nil, ""},
		{"must", []filter.Condition{m("category", "technology")}, nil, nil, `@category:{technology}`},
		{"should", nil, []filter.Condition{m("category", "a"), m("category", "b")}, nil, `(@category:{a} | @category:{b})`},
		{"must_not", nil, nil, []filter.Condition{m("source", "old")}, `-@source:{old}`},
		{"combined", []filter.Condition{m("category", "books")}, nil, []filter.Condition{m("title", "draft")},
			`@category:{books} -@title:{draft}`},
		{"escaped", []filter.Condition{m("source", "नेपाल guide-v2.pdf")}, nil, nil, `@source:{नेपाल\ guide\-v2\.pdf}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expr, err := filter.NewExpression(tc.must, tc.should, tc.mustNo)
			if err != nil {
				t.Fatalf("NewExpression: %v", err)
			}
			if got := buildFilter(expr); got != tc.want {
				t.Errorf("buildFilter = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestVectorToBytes(t *testing.T) {
	b := vectorToBytes([]float32{1.0, 2.0})
	if len(b) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(b))
	}
	// 1.0 = 0x3F800000 little-endian
	if b[0] != 0x00 || b[3] != 0x3F {
		t.Errorf("unexpected encoding % x", b)
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
