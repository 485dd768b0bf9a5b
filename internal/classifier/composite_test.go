package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusdesk/complaint-service/internal/domain"
)

type recordingObserver struct {
	calls [][2]domain.Origin
}

func (o *recordingObserver) ObserveClassification(s, c domain.Origin) {
	o.calls = append(o.calls, [2]domain.Origin{s, c})
}

func unavailable() Classifier {
	return ClassifierFunc(func(context.Context, string) (Result, error) {
		return Result{}, ErrUnavailable
	})
}

func fixed(res Result) Classifier {
	return ClassifierFunc(func(context.Context, string) (Result, error) {
		return res, nil
	})
}

func TestCompositeUsesRemoteWhenAvailable(t *testing.T) {
	obs := &recordingObserver{}
	c := NewComposite(fixed(Result{
		Sentiment:       domain.SentimentSatisfied,
		Category:        domain.CategoryStudentAffairs,
		SentimentOrigin: domain.OriginRemote,
		CategoryOrigin:  domain.OriginRemote,
	}), nil, obs)

	res, err := c.Classify(context.Background(), "terrible food in the canteen")
	assert.NoError(t, err)
	assert.Equal(t, domain.SentimentSatisfied, res.Sentiment)
	assert.Equal(t, domain.CategoryStudentAffairs, res.Category)
	assert.Equal(t, [][2]domain.Origin{{domain.OriginRemote, domain.OriginRemote}}, obs.calls)
}

func TestCompositeFallsBackToLocal(t *testing.T) {
	c := NewComposite(unavailable(), nil, nil)
	res, err := c.Classify(context.Background(), "The food in the canteen is dirty and the staff was unhygienic")
	assert.NoError(t, err)
	assert.Equal(t, domain.SentimentNeutral, res.Sentiment)
	assert.Equal(t, domain.CategoryCanteenHygiene, res.Category)
	assert.Equal(t, domain.OriginLocal, res.SentimentOrigin)
	assert.Equal(t, domain.OriginLocal, res.CategoryOrigin)
}

func TestCompositeFillsFieldsIndependently(t *testing.T) {
	c := NewComposite(fixed(Result{
		Sentiment:       domain.SentimentAngry,
		SentimentOrigin: domain.OriginRemote,
	}), nil, nil)
	res := c.ClassifyWithCategory(context.Background(), "the hostel wifi is down", "")
	assert.Equal(t, domain.SentimentAngry, res.Sentiment)
	assert.Equal(t, domain.OriginRemote, res.SentimentOrigin)
	assert.Equal(t, domain.CategoryInfrastructure, res.Category)
	assert.Equal(t, domain.OriginLocal, res.CategoryOrigin)
}

func TestCompositeKeepsCallerCategory(t *testing.T) {
	c := NewComposite(nil, nil, nil)
	res := c.ClassifyWithCategory(context.Background(), "exam results are late", domain.CategoryOther)
	assert.Equal(t, domain.CategoryOther, res.Category)
	assert.Equal(t, domain.OriginUser, res.CategoryOrigin)

	res = c.ClassifyWithCategory(context.Background(), "exam results are late", domain.Category("Parking"))
	assert.Equal(t, domain.CategoryAcademic, res.Category)
	assert.Equal(t, domain.OriginLocal, res.CategoryOrigin)
}
