package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flamepup2002/nuttracker-sub002/models"
)

var ErrSettingsNotFound = errors.New("findom settings not found")

func GetFindomSettings(ctx context.Context, userID string) (*models.FindomSettings, error) {
	query := `
		SELECT user_id, findom_enabled, interest_rate
		FROM user_settings
		WHERE user_id = $1
	`
	settings := &models.FindomSettings{}
	err := DB.QueryRowContext(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.FindomEnabled,
		&settings.InterestRate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("error getting settings for user %s: %v", userID, err)
	}
	return settings, nil
}

func UpsertFindomSettings(ctx context.Context, settings *models.FindomSettings) error {
	query := `
		INSERT INTO user_settings (user_id, findom_enabled, interest_rate)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET findom_enabled = EXCLUDED.findom_enabled, interest_rate = EXCLUDED.interest_rate
	`
	_, err := DB.ExecContext(ctx, query, settings.UserID, settings.FindomEnabled, settings.InterestRate)
	if err != nil {
		return fmt.Errorf("error updating settings for user %s: %v", settings.UserID, err)
	}
	return nil
}
