package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/eryajf/qaloop/internal/llm"
	"github.com/eryajf/qaloop/internal/model"
)

// 解析结果的来源标记
const (
	SourceCache = "cache"
	SourceDB    = "db"
	SourceLLM   = "llm"
)

var (
	// ErrEmptyQuestion 问题为空或只有空白
	ErrEmptyQuestion = errors.New("empty question")
	// ErrGenerator 生成端传输失败(非 2xx、超时等)
	ErrGenerator = errors.New("generator request failed")
)

// Cache 缓存层,读写都是尽力而为,接口上没有错误返回
type Cache interface {
	Get(ctx context.Context, question string) (*model.Query, bool)
	Put(ctx context.Context, question string, row *model.Query)
}

// Store 持久层,FindByTitle 未命中返回 (nil, nil),错误一律致命
type Store interface {
	FindByTitle(ctx context.Context, question string) (*model.Query, error)
	Upsert(ctx context.Context, row *model.Query) error
}

// Resolution 一次解析的结果
type Resolution struct {
	Source string       `json:"source"` // cache / db / llm
	Row    *model.Query `json:"row"`
}

// Resolver 三级旁路解析编排器:缓存 -> 持久层 -> 生成端
// 是两个存储层唯一的写入方
type Resolver struct {
	cache Cache
	store Store
	gen   llm.Generator
	log   *zap.SugaredLogger
}

// NewResolver 创建解析编排器
func NewResolver(cache Cache, store Store, gen llm.Generator, log *zap.SugaredLogger) *Resolver {
	return &Resolver{
		cache: cache,
		store: store,
		gen:   gen,
		log:   log,
	}
}

// Resolve 解析一个问题,按缓存、持久层、生成端的固定顺序逐级回退
// 首次成功或首次致命错误即终止:
//   - 缓存命中直接返回,不再访问后级
//   - 持久层命中时回填缓存
//   - 双未命中时调用生成端,校验通过后先落库再回填缓存
//
// 缓存的任何故障都不致命;持久层和生成端的故障终止整个请求,不重试
func (r *Resolver) Resolve(ctx context.Context, question string) (*Resolution, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	// 1. 缓存
	if row, ok := r.cache.Get(ctx, question); ok {
		r.log.Debugf("Cache hit for question %q", question)
		return &Resolution{Source: SourceCache, Row: row}, nil
	}

	// 2. 持久层
	row, err := r.store.FindByTitle(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("query store lookup failed: %w", err)
	}
	if row != nil {
		r.cache.Put(ctx, question, row)
		return &Resolution{Source: SourceDB, Row: row}, nil
	}

	// 3. 生成端
	raw, err := r.gen.Generate(ctx, llm.BuildPrompt(question))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerator, err)
	}

	payload, err := llm.ParsePayload(raw)
	if err != nil {
		r.log.Warnf("Generator returned unusable output for question %q: %v", question, err)
		return nil, err
	}

	// 生成端回显的问题不受信任,title 始终用原始输入;body 由生成路径固定为 NULL
	row = &model.Query{
		Score:  payload.Score,
		Title:  question,
		Body:   nil,
		Answer: payload.Answer,
	}

	if err := r.store.Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to persist resolved answer: %w", err)
	}
	r.cache.Put(ctx, question, row)

	return &Resolution{Source: SourceLLM, Row: row}, nil
}
