package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"linguachat/internal/domain"
	"linguachat/internal/providers/translate"
)

// QuotaLedger is the consumer-side slice of the quota subsystem used by the
// dispatch pipeline. Lives here so the pipeline does not depend on the
// ledger's storage details.
type QuotaLedger interface {
	CheckAndIncrement(ctx context.Context, userID string, resource domain.Resource) (bool, error)
	CheckFileStorageLimit(ctx context.Context, userID string, proposedBytes int64) (bool, error)
	IncrementFileStorage(ctx context.Context, userID string, bytes int64) error
}

// ContentTranslator produces the chat-type-appropriate content variant for an
// outgoing message body.
type ContentTranslator interface {
	Translate(ctx context.Context, text string, chat *domain.Chat, participantLanguages []string, senderID string) (domain.Content, error)
}

// Orchestrator fans translation work out per chat type. Translation quota
// denials and provider failures degrade to the original text; only the AI
// interaction gate is a hard failure.
type Orchestrator struct {
	ledger     QuotaLedger
	translator translate.Translator
	users      domain.UserRepository
	logger     zerolog.Logger
}

func NewOrchestrator(ledger QuotaLedger, translator translate.Translator, users domain.UserRepository, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{ledger: ledger, translator: translator, users: users, logger: logger}
}

func (o *Orchestrator) Translate(ctx context.Context, text string, chat *domain.Chat, participantLanguages []string, senderID string) (domain.Content, error) {
	switch chat.Type {
	case domain.ChatPrivate:
		return o.translatePrivate(ctx, text, chat, senderID)
	case domain.ChatGroup:
		return o.translateGroup(ctx, text, participantLanguages, senderID)
	case domain.ChatAI:
		allowed, err := o.ledger.CheckAndIncrement(ctx, senderID, domain.ResourceAIInteractions)
		if err != nil {
			return nil, fmt.Errorf("ai interaction check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("ai interactions: %w", domain.ErrQuotaExceeded)
		}
		return domain.TextContent(text), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidChatType, chat.Type)
	}
}

func (o *Orchestrator) translatePrivate(ctx context.Context, text string, chat *domain.Chat, senderID string) (domain.Content, error) {
	var peerID string
	for _, p := range chat.Participants {
		if p != senderID {
			peerID = p
			break
		}
	}
	if peerID == "" {
		return domain.TextContent(text), nil
	}

	peer, err := o.users.GetByID(ctx, peerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.TextContent(text), nil
		}
		return nil, fmt.Errorf("load peer profile: %w", err)
	}

	return domain.TextContent(o.translateUnit(ctx, text, peer.PreferredLang, senderID)), nil
}

func (o *Orchestrator) translateGroup(ctx context.Context, text string, participantLanguages []string, senderID string) (domain.Content, error) {
	langs := normalizeLangs(participantLanguages)

	type unit struct {
		lang string
		text string
	}
	results := make([]unit, len(langs))

	// Each language is an independent task with its own quota charge; the
	// map is assembled only after every task has returned, so no goroutine
	// touches shared state.
	g, ctx := errgroup.WithContext(ctx)
	for i, lang := range langs {
		i, lang := i, lang
		g.Go(func() error {
			results[i] = unit{lang: lang, text: o.translateUnit(ctx, text, lang, senderID)}
			return nil
		})
	}
	_ = g.Wait() // units absorb their own failures

	merged := make(domain.TranslatedContent, len(results))
	for _, r := range results {
		merged[r.lang] = r.text
	}
	return merged, nil
}

// translateUnit charges one translation-quota unit and translates, falling
// back to the original text on denial or provider failure.
func (o *Orchestrator) translateUnit(ctx context.Context, text, lang, senderID string) string {
	lang = normalizeLang(lang)
	allowed, err := o.ledger.CheckAndIncrement(ctx, senderID, domain.ResourceTranslations)
	if err != nil {
		o.logger.Warn().Err(err).Str("lang", lang).Msg("translation quota check failed")
		return text
	}
	if !allowed {
		return text
	}
	translated, err := o.translator.Translate(ctx, text, lang)
	if err != nil {
		o.logger.Warn().Err(err).Str("lang", lang).Msg("translation failed, using original text")
		return text
	}
	return translated
}

// normalizeLang canonicalizes a stored language preference to its base tag,
// defaulting to English when unset or unparseable.
func normalizeLang(code string) string {
	if code == "" {
		return "en"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "en"
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "en"
	}
	return base.String()
}

func normalizeLangs(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	var langs []string
	for _, code := range codes {
		lang := normalizeLang(code)
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		langs = append(langs, lang)
	}
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return langs
}
