package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/ragchat/internal/db"
	"github.com/kailas-cloud/ragchat/internal/domain/filter"
)

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	filterStr := buildFilter(q.Filters)

	knnPart := fmt.Sprintf("[KNN %d @vector $BLOB]", q.K)
	var queryStr string
	if filterStr != "" {
		queryStr = fmt.Sprintf("(%s)=>%s", filterStr, knnPart)
	} else {
		queryStr = fmt.Sprintf("*=>%s", knnPart)
	}

	args := []string{q.IndexName, queryStr}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	args = append(args,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw)
}

// SearchList performs a paginated filter-only search. Valkey-search cannot
// run FT.SEARCH without KNN, so that flavor scans keys under q.KeyPrefix.
func (s *Store) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if s.flavor == FlavorValkey {
		return s.scanList(ctx, q)
	}

	args := []string{q.IndexName, listQueryString(q.Filters)}
	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}
	args = append(args, "LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit), "DIALECT", "2")

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseListResult(raw)
}

// SearchCount returns the number of documents matching the filter.
func (s *Store) SearchCount(ctx context.Context, q *db.ListQuery) (int, error) {
	if s.flavor == FlavorValkey {
		entries, err := s.scanMatching(ctx, q)
		if err != nil {
			return 0, err
		}
		return len(entries), nil
	}

	cmd := s.b().Arbitrary("FT.SEARCH").
		Args(q.IndexName, listQueryString(q.Filters), "LIMIT", "0", "0", "DIALECT", "2").
		Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

func listQueryString(expr filter.Expression) string {
	if f := buildFilter(expr); f != "" {
		return f
	}
	return "*"
}

// --- SCAN fallback ---

func (s *Store) scanList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	entries, err := s.scanMatching(ctx, q)
	if err != nil {
		return nil, err
	}
	total := len(entries)

	start := min(q.Offset, total)
	end := min(start+q.Limit, total)
	page := entries[start:end]

	if len(q.ReturnFields) > 0 {
		for i := range page {
			page[i].Fields = pickFields(page[i].Fields, q.ReturnFields)
		}
	}
	return &db.SearchResult{Total: total, Entries: page}, nil
}

// scanMatching loads every hash under the prefix and keeps those whose
// metadata matches the filter, in key order.
func (s *Store) scanMatching(ctx context.Context, q *db.ListQuery) ([]db.SearchEntry, error) {
	if q.KeyPrefix == "" {
		return nil, fmt.Errorf("key prefix is required for scan listing")
	}
	keys, err := s.Scan(ctx, q.KeyPrefix+"*")
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	hashes, err := s.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, err
	}

	entries := make([]db.SearchEntry, 0, len(keys))
	for i, fields := range hashes {
		if len(fields) == 0 || !q.Filters.Matches(fields) {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: keys[i], Fields: fields})
	}
	return entries, nil
}

func pickFields(fields map[string]string, names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		if v, ok := fields[n]; ok {
			out[n] = v
		}
	}
	return out
}

// --- Result parsing ---

func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	res, err := parseListResult(raw)
	if err != nil {
		return nil, err
	}
	for i := range res.Entries {
		e := &res.Entries[i]
		if scoreStr, ok := e.Fields["__vector_score"]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				e.Score = 1.0 - d // cosine distance → similarity in [-1, 1]
			}
			delete(e.Fields, "__vector_score")
		}
	}
	return res, nil
}

func parseListResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// buildFilter translates filter.Expression into an FT.SEARCH pre-filter query string.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}

	var parts []string

	for _, cond := range expr.Must() {
		parts = append(parts, buildTagFilter(cond))
	}

	if should := expr.Should(); len(should) > 0 {
		group := make([]string, 0, len(should))
		for _, cond := range should {
			group = append(group, buildTagFilter(cond))
		}
		parts = append(parts, "("+strings.Join(group, " | ")+")")
	}

	for _, cond := range expr.MustNot() {
		parts = append(parts, "-"+buildTagFilter(cond))
	}

	return strings.Join(parts, " ")
}

func buildTagFilter(cond filter.Condition) string {
	return fmt.Sprintf("@%s:{%s}", cond.Key(), tagEscaper.Replace(cond.Match()))
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
