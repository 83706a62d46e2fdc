// Package extract pulls a JSON object out of free-form model output using an
// ordered cascade of increasingly aggressive repair strategies.
package extract

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
)

const (
	StrategyDirect           = "direct"
	StrategyJSONCodeBlock    = "json_code_block"
	StrategyGenericCodeBlock = "generic_code_block"
	StrategyBraceSlice       = "brace_slice"
	StrategyStringRepair     = "string_repair"
	StrategyCommaQuoteRepair = "comma_quote_repair"
	StrategyBalancedScan     = "balanced_scan"
)

var (
	errNoCandidate = errors.New("no candidate text")
	errNotObject   = errors.New("parsed value is not an object")
)

// Strategy turns raw text into a candidate JSON document.
type Strategy interface {
	Name() string
	Candidate(raw string) (string, error)
}

type strategyFunc struct {
	name string
	fn   func(raw string) (string, error)
}

func (s strategyFunc) Name() string                        { return s.name }
func (s strategyFunc) Candidate(raw string) (string, error) { return s.fn(raw) }

// DefaultStrategies is the fixed cascade, in order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		strategyFunc{StrategyDirect, direct},
		strategyFunc{StrategyJSONCodeBlock, jsonCodeBlock},
		strategyFunc{StrategyGenericCodeBlock, genericCodeBlock},
		strategyFunc{StrategyBraceSlice, braceSlice},
		strategyFunc{StrategyStringRepair, stringRepair},
		strategyFunc{StrategyCommaQuoteRepair, commaQuoteRepair},
		strategyFunc{StrategyBalancedScan, balancedScan},
	}
}

type Config struct {
	// ExcerptBytes bounds the raw-text excerpt returned on failure.
	ExcerptBytes int
}

func DefaultConfig() Config {
	return Config{ExcerptBytes: 512}
}

type Attempt struct {
	Strategy string `json:"strategy"`
	Error    string `json:"error,omitempty"`
}

type Result struct {
	Success bool
	// Data is the decoded top-level object; JSON is the exact text it was decoded from.
	Data     map[string]any
	JSON     string
	Strategy string
	Attempts []Attempt
	Excerpt  string
}

type Extractor struct {
	cfg        Config
	log        *logger.Logger
	strategies []Strategy
}

func New(cfg Config, log *logger.Logger) *Extractor {
	if cfg.ExcerptBytes <= 0 {
		cfg.ExcerptBytes = DefaultConfig().ExcerptBytes
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Extractor{cfg: cfg, log: log.With("component", "Extractor"), strategies: DefaultStrategies()}
}

// Extract tries every strategy in order and stops at the first that yields a
// JSON object. It never returns an error; failure is reported in Result.
func (e *Extractor) Extract(raw string) Result {
	res := Result{}
	for _, s := range e.strategies {
		res.Strategy = s.Name()
		obj, text, err := attempt(s, raw)
		if err != nil {
			res.Attempts = append(res.Attempts, Attempt{Strategy: s.Name(), Error: err.Error()})
			e.log.Debug("extract strategy failed", "strategy", s.Name(), "error", err)
			continue
		}
		res.Attempts = append(res.Attempts, Attempt{Strategy: s.Name()})
		res.Success = true
		res.Data = obj
		res.JSON = text
		return res
	}
	res.Excerpt = Excerpt(raw, e.cfg.ExcerptBytes)
	e.log.Warn("extract exhausted all strategies", "last_strategy", res.Strategy, "raw_bytes", len(raw))
	return res
}

func attempt(s Strategy, raw string) (map[string]any, string, error) {
	text, err := s.Candidate(raw)
	if err != nil {
		return nil, "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "", errNoCandidate
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, "", err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, "", errNotObject
	}
	return obj, text, nil
}

// Excerpt returns at most max bytes of s without splitting a UTF-8 sequence.
func Excerpt(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
