package classifier

import (
	"context"
	"strings"

	"github.com/campusdesk/complaint-service/internal/domain"
)

var angryKeywords = []string{"terrible", "worst", "horrible", "unacceptable", "disgusted", "angry", "broken", "outage"}

var frustratedKeywords = []string{"disappointed", "annoying", "frustrated", "slow", "fail", "wait", "stuck"}

type categoryRule struct {
	category domain.Category
	keywords []string
}

// Rules are checked in order; the first rule with any matching keyword wins.
var categoryRules = []categoryRule{
	{domain.CategorySexualHarassment, []string{"sexual", "harassment", "touch", "inappropriate", "unsafe", "abuse", "molest"}},
	{domain.CategoryRagging, []string{"ragging", "bully", "senior", "force", "threat"}},
	{domain.CategoryDiscrimination, []string{"caste", "religion", "gender", "discriminat", "bias"}},
	{domain.CategoryAcademic, []string{"grade", "exam", "class", "faculty", "teacher", "attendance", "lecture", "syllabus"}},
	{domain.CategoryInfrastructure, []string{"fan", "light", "water", "wifi", "internet", "room", "hostel", "broken", "electricity"}},
	{domain.CategoryCanteenHygiene, []string{"food", "mess", "canteen", "hygiene", "clean", "dirty", "washroom", "toilet", "water"}},
	{domain.CategoryStudentAffairs, []string{"election", "discipline", "event", "fee", "scholarship", "library"}},
}

// Local is the keyword-scoring classifier. It is pure and never fails.
type Local struct{}

// NewLocal returns the keyword classifier.
func NewLocal() Local {
	return Local{}
}

// Classify scores text against the fixed keyword tables.
func (Local) Classify(_ context.Context, text string) (Result, error) {
	return Result{
		Sentiment:       AnalyzeSentiment(text),
		Category:        SuggestCategory(text),
		SentimentOrigin: domain.OriginLocal,
		CategoryOrigin:  domain.OriginLocal,
	}, nil
}

// AnalyzeSentiment scores text: -2 for each angry keyword present and -1 for
// each frustrated keyword present, case-insensitively. Below -3 is ANGRY, below
// zero FRUSTRATED, anything else NEUTRAL.
func AnalyzeSentiment(text string) domain.Sentiment {
	lower := strings.ToLower(text)
	score := 0
	for _, w := range angryKeywords {
		if strings.Contains(lower, w) {
			score -= 2
		}
	}
	for _, w := range frustratedKeywords {
		if strings.Contains(lower, w) {
			score--
		}
	}
	switch {
	case score < -3:
		return domain.SentimentAngry
	case score < 0:
		return domain.SentimentFrustrated
	default:
		return domain.SentimentNeutral
	}
}

// SuggestCategory returns the category of the first rule whose keywords occur
// in text, or Other.
func SuggestCategory(text string) domain.Category {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, w := range rule.keywords {
			if strings.Contains(lower, w) {
				return rule.category
			}
		}
	}
	return domain.CategoryOther
}
