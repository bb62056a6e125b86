package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// DefaultLanguage is used when neither a stored nor a device language is supported.
const DefaultLanguage = "de"

var supportedLanguages = []string{"de", "en", "fr", "hr", "pt"}

// SupportedLanguages returns the UI languages in display order.
func SupportedLanguages() []string {
	return slices.Clone(supportedLanguages)
}

// resolveLanguage picks stored, then device, then DefaultLanguage. Region
// suffixes such as "en-GB" are ignored.
func resolveLanguage(stored, device string) string {
	for _, candidate := range []string{stored, device} {
		code := baseLanguage(candidate)
		if slices.Contains(supportedLanguages, code) {
			return code
		}
	}
	return DefaultLanguage
}

func baseLanguage(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

// LanguageService persists the UI language.
type LanguageService struct {
	store  *SessionStore
	logger *slog.Logger
}

// NewLanguageService constructs a language service.
func NewLanguageService(store *SessionStore) *LanguageService {
	return NewLanguageServiceWithLogger(store, nil)
}

// NewLanguageServiceWithLogger allows injecting a custom logger for language changes.
func NewLanguageServiceWithLogger(store *SessionStore, logger *slog.Logger) *LanguageService {
	return &LanguageService{store: store, logger: defaultLogger(logger)}
}

// Resolve returns the language to display given the device's language tag.
func (s *LanguageService) Resolve(ctx context.Context, device string) string {
	return resolveLanguage(s.store.Language(ctx), device)
}

// Set validates and stores lang.
func (s *LanguageService) Set(ctx context.Context, lang string) (code string, err error) {
	if s == nil {
		err = fmt.Errorf("LanguageService is nil")
		return
	}

	logger := serviceLogger(ctx, s.logger, "LanguageService", "Set", "language", lang)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to set language", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "language set")
	}()

	code = baseLanguage(lang)
	if !slices.Contains(supportedLanguages, code) {
		vErr := &ValidationError{}
		vErr.add("language", "must be one of "+strings.Join(supportedLanguages, ", "))
		err = vErr
		code = ""
		return
	}
	err = s.store.SaveLanguage(ctx, code)
	return
}
