package usecase

import (
	"context"

	"foodcourt/internal/apperr"
	"foodcourt/internal/domain/model"
	"foodcourt/internal/domain/split"
)

type SplitUsecase struct {
	settings *SettingsStore
}

func NewSplitUsecase(settings *SettingsStore) *SplitUsecase {
	return &SplitUsecase{settings: settings}
}

// Percentages は現在の設定値を読む
func (u *SplitUsecase) Percentages(ctx context.Context) (split.Percentages, error) {
	tenant, err := u.settings.Get(ctx, model.SettingTenantPercentage)
	if err != nil {
		return split.Percentages{}, err
	}
	platform, err := u.settings.Get(ctx, model.SettingPlatformPercentage)
	if err != nil {
		return split.Percentages{}, err
	}
	checkout, err := u.settings.Get(ctx, model.SettingCheckoutPercentage)
	if err != nil {
		return split.Percentages{}, err
	}
	return split.ParsePercentages(tenant, platform, checkout)
}

// ComputeSplit はプレビュー用。何も書き込まない。
func (u *SplitUsecase) ComputeSplit(ctx context.Context, gross int64) (split.Shares, error) {
	if gross < 0 {
		return split.Shares{}, apperr.New(apperr.KindValidation, "split.preview", "gross amount must not be negative")
	}
	p, err := u.Percentages(ctx)
	if err != nil {
		return split.Shares{}, err
	}
	return split.Compute(gross, p)
}
