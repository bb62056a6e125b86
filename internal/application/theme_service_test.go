package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/salon-admin/internal/api"
)

func TestThemeService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	svc := NewThemeService(f.store, f.connector)

	theme, err := svc.Initialize(ctx)
	if err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if theme.Mode != ThemeStandard || theme.Palette != StandardPalette() {
		t.Fatalf("expected standard theme by default, got %+v", theme)
	}
	if f.backend.count("DesignSettings") != 0 {
		t.Fatalf("expected no design request in standard mode")
	}

	f.backend.design = api.DesignSettings{AccentColor: "#FF0066", AccentGradientStart: "#FF66AA"}
	theme, err = svc.SetMode(ctx, ThemeCustom)
	if err != nil {
		t.Fatalf("SetMode returned error: %v", err)
	}
	if theme.Palette.Primary != "#FF0066" || theme.Palette.Shadow != "#FF0066" || theme.Palette.PrimaryLight != "#FF66AA" {
		t.Fatalf("expected accent colours mapped, got %+v", theme.Palette)
	}
	if theme.Palette.Background != "#121212" {
		t.Fatalf("expected dark background kept")
	}
	if f.store.ThemeMode(ctx) != ThemeCustom {
		t.Fatalf("expected custom mode persisted")
	}

	f.backend.designErr = errors.New("offline")
	theme, err = svc.Initialize(ctx)
	if err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if theme.Mode != ThemeCustom || !theme.Fallback || theme.Palette != StandardPalette() {
		t.Fatalf("expected standard palette fallback in custom mode, got %+v", theme)
	}
	if svc.Mode() != ThemeCustom {
		t.Fatalf("expected mode to remain custom")
	}

	var vErr *ValidationError
	if _, err := svc.SetMode(ctx, ThemeMode("neon")); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
