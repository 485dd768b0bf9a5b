package classifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/campusdesk/complaint-service/internal/domain"
)

// Observer is told about every composite classification.
type Observer interface {
	ObserveClassification(sentimentOrigin, categoryOrigin domain.Origin)
}

// Composite tries the remote classifier and fills any gap from the local one.
// It never fails.
type Composite struct {
	remote   Classifier
	local    Local
	logger   *zap.Logger
	observer Observer
}

// NewComposite builds the classifier chain. remote may be nil.
func NewComposite(remote Classifier, logger *zap.Logger, observer Observer) *Composite {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composite{remote: remote, local: NewLocal(), logger: logger, observer: observer}
}

// Classify implements Classifier; the error is always nil.
func (c *Composite) Classify(ctx context.Context, text string) (Result, error) {
	return c.ClassifyWithCategory(ctx, text, ""), nil
}

// ClassifyWithCategory classifies text. A valid preset category chosen by the
// caller is kept as is.
func (c *Composite) ClassifyWithCategory(ctx context.Context, text string, preset domain.Category) Result {
	var result Result
	if c.remote != nil {
		remote, err := c.remote.Classify(ctx, text)
		if err == nil {
			result = remote
		} else {
			c.logger.Debug("falling back to local classification", zap.Error(err))
		}
	}

	if !result.Sentiment.Valid() || !result.Category.Valid() {
		local, _ := c.local.Classify(ctx, text)
		if !result.Sentiment.Valid() {
			result.Sentiment = local.Sentiment
			result.SentimentOrigin = local.SentimentOrigin
		}
		if !result.Category.Valid() {
			result.Category = local.Category
			result.CategoryOrigin = local.CategoryOrigin
		}
	}

	if preset.Valid() {
		result.Category = preset
		result.CategoryOrigin = domain.OriginUser
	}

	if c.observer != nil {
		c.observer.ObserveClassification(result.SentimentOrigin, result.CategoryOrigin)
	}
	return result
}
