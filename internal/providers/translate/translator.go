package translate

import (
	"context"
	"errors"
)

// ErrTranslation is the generic failure returned when the provider cannot
// produce a translation. Callers substitute the original text.
var ErrTranslation = errors.New("translation failed")

// Translator converts text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}
