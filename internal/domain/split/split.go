// Package split は精算額をテナント・プラットフォーム・会計の3者に分ける。
//
// platform = floor(gross * platform% / 100)
// checkout = floor(gross * checkout% / 100)
// tenant   = gross - platform - checkout
//
// 端数はテナントが吸収するので、3者の合計は常に gross と一致する。
package split

import (
	"foodcourt/internal/apperr"

	"github.com/shopspring/decimal"
)

type Percentages struct {
	Tenant   decimal.Decimal
	Platform decimal.Decimal
	Checkout decimal.Decimal
}

// ParsePercentages は設定値の文字列から読む
func ParsePercentages(tenant, platform, checkout string) (Percentages, error) {
	var p Percentages
	var err error
	if p.Tenant, err = parsePct("tenant", tenant); err != nil {
		return Percentages{}, err
	}
	if p.Platform, err = parsePct("platform", platform); err != nil {
		return Percentages{}, err
	}
	if p.Checkout, err = parsePct("checkout", checkout); err != nil {
		return Percentages{}, err
	}
	return p, nil
}

func parsePct(name, v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, apperr.Wrap(apperr.KindConfig, "split.parse", name+" percentage is not a number", err)
	}
	return d, nil
}

type Shares struct {
	GrossAmount   int64 `json:"gross_amount"`
	TenantShare   int64 `json:"tenant_share"`
	PlatformShare int64 `json:"platform_share"`
	CheckoutShare int64 `json:"checkout_share"`
}

// Compute は副作用なし。同じ入力なら同じ結果。
func Compute(gross int64, p Percentages) (Shares, error) {
	if gross < 0 {
		return Shares{}, apperr.New(apperr.KindValidation, "split.compute", "gross amount must not be negative")
	}
	if p.Tenant.IsNegative() || p.Platform.IsNegative() || p.Checkout.IsNegative() {
		return Shares{}, apperr.New(apperr.KindConfig, "split.compute", "percentages must not be negative").
			With("tenant_pct", p.Tenant.String()).
			With("platform_pct", p.Platform.String()).
			With("checkout_pct", p.Checkout.String())
	}

	g := decimal.NewFromInt(gross)
	// Shift(-2) は /100 を誤差なしで行う
	platform := g.Mul(p.Platform).Shift(-2).Floor().IntPart()
	checkout := g.Mul(p.Checkout).Shift(-2).Floor().IntPart()
	tenant := gross - platform - checkout

	if tenant < 0 {
		return Shares{}, apperr.New(apperr.KindConfig, "split.compute", "platform and checkout percentages exceed 100").
			With("platform_pct", p.Platform.String()).
			With("checkout_pct", p.Checkout.String())
	}

	return Shares{
		GrossAmount:   gross,
		TenantShare:   tenant,
		PlatformShare: platform,
		CheckoutShare: checkout,
	}, nil
}
