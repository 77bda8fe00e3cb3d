package usecase

import (
	"context"
	"sync"

	"gogotalk/internal/domain/entity"
	"gogotalk/internal/domain/repository"
	"gogotalk/internal/infrastructure/metrics"
	"gogotalk/pkg/errors"
	"gogotalk/pkg/logger"
)

const themeKey = "theme"

// ThemeSettings holds the appearance preference. Until loaded, and when
// nothing was ever saved, it follows the system.
type ThemeSettings struct {
	store repository.KeyValueStore

	mu    sync.RWMutex
	theme entity.Theme
}

func NewThemeSettings(store repository.KeyValueStore) *ThemeSettings {
	return &ThemeSettings{
		store: store,
		theme: entity.ThemeSystem,
	}
}

func (s *ThemeSettings) Load(ctx context.Context) error {
	raw, ok, err := s.store.Get(ctx, themeKey)
	if err != nil {
		metrics.LocalStorageErrors.Inc()
		logger.Error("Error loading theme: %v", err)
		return errors.LocalStorage("Failed to load theme", err)
	}

	theme := entity.ThemeSystem
	if ok && entity.Theme(raw).Valid() {
		theme = entity.Theme(raw)
	}

	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	return nil
}

func (s *ThemeSettings) Get() entity.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// Set applies theme in memory; a failed save is logged and does not undo it.
func (s *ThemeSettings) Set(ctx context.Context, theme entity.Theme) (entity.Theme, error) {
	if !theme.Valid() {
		return s.Get(), errors.BadRequest("Theme must be light, dark or system", nil)
	}

	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()

	if err := s.store.Set(ctx, themeKey, string(theme)); err != nil {
		metrics.LocalStorageErrors.Inc()
		logger.Error("Error saving theme: %v", err)
	}

	return theme, nil
}

// Toggle switches light to dark and anything else to light.
func (s *ThemeSettings) Toggle(ctx context.Context) entity.Theme {
	next := entity.ThemeLight
	if s.Get() == entity.ThemeLight {
		next = entity.ThemeDark
	}

	theme, _ := s.Set(ctx, next)
	return theme
}

func (s *ThemeSettings) IsDark(systemDark bool) bool {
	return IsDarkTheme(s.Get(), systemDark)
}

func IsDarkTheme(theme entity.Theme, systemDark bool) bool {
	return theme == entity.ThemeDark || (theme == entity.ThemeSystem && systemDark)
}
