package qou

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	keyPrefix     string
	spellDistance int
	aggSize       int
	engineTimeout time.Duration

	extractor Extractor
	lexicon   map[string][]string
	stopwords []string

	batchSize int
	workers   int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis 8 instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix namespaces every key and index the client touches.
// Default: "qou:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithSpellcheckDistance sets the maximum edit distance of spelling
// suggestions (1-4). Default: 2.
func WithSpellcheckDistance(d int) Option {
	return optionFunc(func(c *clientConfig) {
		c.spellDistance = d
	})
}

// WithAggregationSize sets the number of facet values per facet. Default: 10.
func WithAggregationSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.aggSize = n
	})
}

// WithEngineTimeout bounds each engine call. Default: 3s.
func WithEngineTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.engineTimeout = d
	})
}

// WithExtractor sets the entity recognizer.
func WithExtractor(e Extractor) Option {
	return optionFunc(func(c *clientConfig) {
		c.extractor = e
	})
}

// WithLexicon replaces the fallback terms of the given entity types,
// e.g. {"BRAND": {"Fage", "Chobani"}}. Other types keep their defaults.
func WithLexicon(terms map[string][]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.lexicon = terms
	})
}

// WithStopwords replaces the words dropped from free-text matching.
func WithStopwords(words []string) Option {
	return optionFunc(func(c *clientConfig) {
		c.stopwords = words
	})
}

// WithBatchSize sets the number of products written per batch by Index.
// Default: 500.
func WithBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = size
	})
}

// WithWorkers sets the number of concurrent write batches of Index. Default: 4.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
