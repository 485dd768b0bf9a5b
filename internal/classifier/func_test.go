package classifier

import "context"

type ClassifierFunc func(ctx context.Context, text string) (Result, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) (Result, error) {
	return f(ctx, text)
}
