package tokenizer

import (
	"sync"
	"sync/atomic"

	"github.com/Laisky/errors/v2"
	"github.com/pkoukk/tiktoken-go"
)

// Counter counts tokens of a text.
type Counter interface {
	Count(text string) int
}

// Tokenizer is a lazily loaded BPE encoder. The vocabulary is loaded at most once,
// on Init or on the first Count, and shared by every caller afterwards.
type Tokenizer struct {
	encoding string

	once  sync.Once
	enc   *tiktoken.Tiktoken
	err   error
	ready atomic.Bool
}

// New returns a Tokenizer for a tiktoken encoding name such as "cl100k_base".
// Nothing is loaded until Init or Count is called.
func New(encoding string) *Tokenizer {
	return &Tokenizer{encoding: encoding}
}

// getEncodingFn is swapped in tests to avoid fetching vocabularies.
var getEncodingFn = tiktoken.GetEncoding

// Init loads the vocabulary. It is safe to call concurrently and more than once;
// every call returns the result of the first load.
func (t *Tokenizer) Init() error {
	t.once.Do(func() {
		t.enc, t.err = getEncodingFn(t.encoding)
		if t.err != nil {
			t.err = errors.Wrapf(t.err, "load tiktoken encoding %q, "+
				"set TIKTOKEN_CACHE_DIR to a directory holding the vocabulary when running offline", t.encoding)
			return
		}
		t.ready.Store(true)
	})
	return t.err
}

// Ready reports whether the vocabulary has been loaded successfully.
func (t *Tokenizer) Ready() bool {
	return t.ready.Load()
}

// Encoding returns the configured encoding name.
func (t *Tokenizer) Encoding() string {
	return t.encoding
}

// Count returns the number of tokens in text. It panics if the vocabulary cannot be
// loaded.
func (t *Tokenizer) Count(text string) int {
	if err := t.Init(); err != nil {
		panic(err)
	}
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}
