package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/complaint-service/internal/domain"
)

func TestLocalCanteenComplaint(t *testing.T) {
	res, err := NewLocal().Classify(context.Background(), "The food in the canteen is dirty and the staff was unhygienic")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCanteenHygiene, res.Category)
	assert.Equal(t, domain.SentimentNeutral, res.Sentiment)
	assert.Equal(t, domain.OriginLocal, res.SentimentOrigin)
	assert.Equal(t, domain.OriginLocal, res.CategoryOrigin)
}

func TestAnalyzeSentimentThresholds(t *testing.T) {
	cases := []struct {
		text string
		want domain.Sentiment
	}{
		{"Everything is fine", domain.SentimentNeutral},
		{"This is terrible", domain.SentimentFrustrated},
		{"the queue is slow and I had to wait", domain.SentimentFrustrated},
		{"terrible and slow", domain.SentimentFrustrated},
		{"TERRIBLE, the WORST service", domain.SentimentAngry},
		{"horrible outage, stuck again", domain.SentimentAngry},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AnalyzeSentiment(tc.text), tc.text)
	}
}

func TestAnalyzeSentimentCountsKeywordsOnce(t *testing.T) {
	assert.Equal(t, domain.SentimentFrustrated, AnalyzeSentiment("terrible terrible terrible"))
}

func TestSuggestCategoryPriorityOrder(t *testing.T) {
	cases := []struct {
		text string
		want domain.Category
	}{
		{"A senior tried to touch me", domain.CategorySexualHarassment},
		{"Seniors keep bullying juniors", domain.CategoryRagging},
		{"Bias based on caste", domain.CategoryDiscrimination},
		{"Exam fee is too high", domain.CategoryAcademic},
		{"Broken fan in the hostel", domain.CategoryInfrastructure},
		{"Water in the mess is dirty", domain.CategoryInfrastructure},
		{"The toilet is never cleaned", domain.CategoryCanteenHygiene},
		{"Library hours were cut", domain.CategoryStudentAffairs},
		{"Nothing matches here", domain.CategoryOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SuggestCategory(tc.text), tc.text)
	}
}

func TestLocalIsDeterministic(t *testing.T) {
	text := "The wifi is broken and support is slow, this is unacceptable"
	first, _ := NewLocal().Classify(context.Background(), text)
	for i := 0; i < 20; i++ {
		again, _ := NewLocal().Classify(context.Background(), text)
		assert.Equal(t, first, again)
	}
}

func TestLocalHandlesEmptyInput(t *testing.T) {
	res, err := NewLocal().Classify(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentNeutral, res.Sentiment)
	assert.Equal(t, domain.CategoryOther, res.Category)
}
