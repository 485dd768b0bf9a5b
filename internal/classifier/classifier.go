// Package classifier derives a sentiment and a suggested category from free text.
//
// A remote language-model backed classifier is tried first; whatever it cannot
// supply is filled in by the deterministic keyword classifier, so callers always
// get a result and can tell from the origin tags which path produced it.
package classifier

import (
	"context"
	"errors"

	"github.com/campusdesk/complaint-service/internal/domain"
)

// ErrUnavailable is returned by remote classifiers that produced no usable output.
var ErrUnavailable = errors.New("classifier unavailable")

// Result is the outcome of classifying a piece of text.
type Result struct {
	Sentiment       domain.Sentiment `json:"sentiment"`
	Category        domain.Category  `json:"category"`
	SentimentOrigin domain.Origin    `json:"sentiment_origin"`
	CategoryOrigin  domain.Origin    `json:"category_origin"`
}

// Classifier maps text to a Result.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

