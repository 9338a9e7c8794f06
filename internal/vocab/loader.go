// Package vocab builds the reference vocabulary used to filter fetched text.
package vocab

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/essay-wordfreq/internal/essays"
)

// Loader fetches a flat-text word list, one candidate word per line.
type Loader struct {
	client    *resty.Client
	sourceURL string
	logger    *zap.Logger
}

// NewLoader constructs a Loader for the given source URL.
func NewLoader(sourceURL string, timeout time.Duration, logger *zap.Logger) *Loader {
	client := resty.New().SetTimeout(timeout)
	return &Loader{
		client:    client,
		sourceURL: sourceURL,
		logger:    logger,
	}
}

// Load fetches the word list and normalizes it into a lookup set. A line is
// kept iff it is entirely alphabetic and longer than 2 characters; kept words
// are lowercased and deduplicated. Any fetch failure is a hard failure: an
// empty vocabulary would silently drop every word downstream.
func (l *Loader) Load(ctx context.Context) (essays.Vocabulary, error) {
	resp, err := l.client.R().SetContext(ctx).Get(l.sourceURL)
	if err != nil {
		return nil, fmt.Errorf("fetch word list: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch word list: unexpected status %d", resp.StatusCode())
	}

	vocabulary := Normalize(strings.Split(resp.String(), "\n"))
	l.logger.Info("vocabulary loaded",
		zap.String("source", l.sourceURL),
		zap.Int("words", len(vocabulary)),
	)
	return vocabulary, nil
}

// Normalize filters raw word-list lines into a vocabulary set.
func Normalize(lines []string) essays.Vocabulary {
	vocabulary := make(essays.Vocabulary, len(lines))
	for _, line := range lines {
		word := strings.TrimSpace(line)
		if len(word) <= 2 || !isAlphabetic(word) {
			continue
		}
		vocabulary[strings.ToLower(word)] = struct{}{}
	}
	return vocabulary
}

func isAlphabetic(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
