package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cravesmart-backend/models"
	"cravesmart-backend/storage"
)

// ThemeRepository stores the theme preference string under a fixed key
type ThemeRepository struct {
	store storage.Storage
}

// NewThemeRepository creates a new theme repository
func NewThemeRepository(store storage.Storage) *ThemeRepository {
	return &ThemeRepository{store: store}
}

// Get returns the saved theme, light when nothing usable is stored
func (r *ThemeRepository) Get(ctx context.Context) (models.Theme, error) {
	reader, err := r.store.Download(ctx, ThemeKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.ThemeLight, nil
		}
		return "", fmt.Errorf("failed to load theme: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, 64))
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}

	if models.Theme(strings.TrimSpace(string(data))) == models.ThemeDark {
		return models.ThemeDark, nil
	}
	return models.ThemeLight, nil
}

// Set saves the theme
func (r *ThemeRepository) Set(ctx context.Context, theme models.Theme) error {
	if !theme.IsValid() {
		return fmt.Errorf("invalid theme: %q", theme)
	}
	return r.store.Put(ctx, ThemeKey, strings.NewReader(string(theme)))
}
