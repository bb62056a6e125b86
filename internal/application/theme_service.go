package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// ThemeMode selects the standard palette or the salon's own colours.
type ThemeMode string

const (
	ThemeStandard ThemeMode = "standard"
	ThemeCustom   ThemeMode = "custom"
)

// ParseThemeMode reports whether value names a known mode.
func ParseThemeMode(value string) (ThemeMode, bool) {
	switch mode := ThemeMode(value); mode {
	case ThemeStandard, ThemeCustom:
		return mode, true
	}
	return "", false
}

// Palette holds the colours of the UI as hex strings.
type Palette struct {
	Background    string `json:"background"`
	Card          string `json:"card"`
	CardSecondary string `json:"card_secondary"`
	Primary       string `json:"primary"`
	PrimaryLight  string `json:"primary_light"`
	Text          string `json:"text"`
	TextSecondary string `json:"text_secondary"`
	Border        string `json:"border"`
	Success       string `json:"success"`
	Warning       string `json:"warning"`
	Error         string `json:"error"`
	Shadow        string `json:"shadow"`
}

// StandardPalette is the built-in dark palette.
func StandardPalette() Palette {
	return Palette{
		Background:    "#121212",
		Card:          "#1E1E1E",
		CardSecondary: "#2A2A2A",
		Primary:       "#7C3AED",
		PrimaryLight:  "#9F67FF",
		Text:          "#FFFFFF",
		TextSecondary: "#A0A0A0",
		Border:        "#333333",
		Success:       "#10B981",
		Warning:       "#F59E0B",
		Error:         "#EF4444",
		Shadow:        "#7C3AED",
	}
}

// Theme is the active mode and the palette actually in use.
type Theme struct {
	Mode    ThemeMode
	Palette Palette
	// Fallback is true when custom mode is selected but the salon colours
	// could not be loaded.
	Fallback bool
}

// ThemeService resolves and persists the colour theme.
type ThemeService struct {
	store     *SessionStore
	connector Connector
	logger    *slog.Logger

	mu    sync.RWMutex
	theme Theme
}

// NewThemeService constructs a theme service with the provided dependencies.
func NewThemeService(store *SessionStore, connector Connector) *ThemeService {
	return NewThemeServiceWithLogger(store, connector, nil)
}

// NewThemeServiceWithLogger constructs a theme service with a specified logger.
func NewThemeServiceWithLogger(store *SessionStore, connector Connector, logger *slog.Logger) *ThemeService {
	return &ThemeService{
		store:     store,
		connector: connector,
		logger:    defaultLogger(logger),
		theme:     Theme{Mode: ThemeStandard, Palette: StandardPalette()},
	}
}

// Initialize applies the stored mode.
func (s *ThemeService) Initialize(ctx context.Context) (Theme, error) {
	if s == nil {
		return Theme{}, fmt.Errorf("ThemeService is nil")
	}
	return s.apply(ctx, s.store.ThemeMode(ctx)), nil
}

// SetMode persists mode and applies it.
func (s *ThemeService) SetMode(ctx context.Context, mode ThemeMode) (theme Theme, err error) {
	if s == nil {
		err = fmt.Errorf("ThemeService is nil")
		return
	}

	logger := serviceLogger(ctx, s.logger, "ThemeService", "SetMode", "mode", mode)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to set theme", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "theme set", "fallback", theme.Fallback)
	}()

	if _, ok := ParseThemeMode(string(mode)); !ok {
		vErr := &ValidationError{}
		vErr.add("mode", "must be standard or custom")
		err = vErr
		return
	}
	if err = s.store.SaveThemeMode(ctx, mode); err != nil {
		return
	}
	theme = s.apply(ctx, mode)
	return
}

// Theme returns the theme currently in use.
func (s *ThemeService) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// Mode returns the selected mode.
func (s *ThemeService) Mode() ThemeMode {
	return s.Theme().Mode
}

// apply resolves the palette for mode. A failed custom load keeps the mode
// so the next start retries.
func (s *ThemeService) apply(ctx context.Context, mode ThemeMode) Theme {
	theme := Theme{Mode: mode, Palette: StandardPalette()}
	if mode == ThemeCustom {
		settings, err := s.connector.Backend().DesignSettings(ctx)
		if err != nil {
			serviceLogger(ctx, s.logger, "ThemeService", "apply").
				WarnContext(ctx, "custom theme unavailable, using standard palette", "error", err, "error_kind", ErrorKind(err))
			theme.Fallback = true
		} else {
			if settings.AccentColor != "" {
				theme.Palette.Primary = settings.AccentColor
				theme.Palette.Shadow = settings.AccentColor
			}
			if settings.AccentGradientStart != "" {
				theme.Palette.PrimaryLight = settings.AccentGradientStart
			}
		}
	}

	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	return theme
}
