package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"

	"foodcourt/internal/apperr"
	"foodcourt/internal/domain/model"
	"foodcourt/internal/logging"
	repo "foodcourt/internal/repository"

	"github.com/shopspring/decimal"
)

// SettingsStore は設定値のプロセス内キャッシュ。
// 書き込みはストレージ→キャッシュの順で、キャッシュへの反映が済んでから返るので、
// Update が返ったあとの読み取りは必ず新しい値を見る。
// ストレージ I/O 中に mu は持たない。
type SettingsStore struct {
	repo   repo.SettingRepository
	audits repo.AuditLogRepository
	clock  Clock

	writeMu sync.Mutex // Update / List / Seed を直列にする

	mu    sync.RWMutex
	cache map[string]model.Setting
	gen   uint64 // キャッシュを書き換えるたびに増える
}

func NewSettingsStore(settings repo.SettingRepository, audits repo.AuditLogRepository, clock Clock) *SettingsStore {
	return &SettingsStore{
		repo:   settings,
		audits: audits,
		clock:  clock,
		cache:  map[string]model.Setting{},
	}
}

// Seed は未登録のキーに既定値を入れる
func (s *SettingsStore) Seed(ctx context.Context) error {
	now := s.clock.Now()
	defaults := model.DefaultSettings()
	for i := range defaults {
		defaults[i].UpdatedAt = now
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.repo.InsertMissing(ctx, defaults); err != nil {
		return storageErr("settings.seed", err)
	}

	s.mu.Lock()
	s.cache = map[string]model.Setting{}
	s.gen++
	s.mu.Unlock()
	return nil
}

func (s *SettingsStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	v, ok := s.cache[key]
	gen := s.gen
	s.mu.RUnlock()
	if ok {
		return v.Value, nil
	}

	got, err := s.repo.Get(ctx, key)
	if errors.Is(err, repo.ErrNotFound) {
		return "", apperr.Newf(apperr.KindConfig, "settings.get", "setting %s is not configured", key).With("key", key)
	}
	if err != nil {
		return "", storageErr("settings.get", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache[key]; ok {
		return v.Value, nil
	}
	// 読んでいる間に書き換えがあれば古いかもしれないので入れない
	if s.gen == gen {
		s.cache[key] = got
	}
	return got.Value, nil
}

func (s *SettingsStore) Int(ctx context.Context, key string) (int64, error) {
	v, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindConfig, "settings.int", "setting "+key+" is not an integer", err).With("key", key)
	}
	return n, nil
}

func (s *SettingsStore) Decimal(ctx context.Context, key string) (decimal.Decimal, error) {
	v, err := s.Get(ctx, key)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Decimal{}, apperr.Wrap(apperr.KindConfig, "settings.decimal", "setting "+key+" is not a number", err).With("key", key)
	}
	return d, nil
}

// List はストレージから読み直してキャッシュも入れ替える
func (s *SettingsStore) List(ctx context.Context) ([]model.Setting, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageErr("settings.list", err)
	}
	fresh := make(map[string]model.Setting, len(all))
	for _, st := range all {
		fresh[st.Key] = st
	}
	s.mu.Lock()
	s.cache = fresh
	s.gen++
	s.mu.Unlock()
	return all, nil
}

// Update は値を検証して保存し、監査ログを残す
func (s *SettingsStore) Update(ctx context.Context, actorID int64, key, value string) (model.Setting, error) {
	value = strings.TrimSpace(value)
	if err := validateSetting(key, value); err != nil {
		return model.Setting{}, err
	}

	s.writeMu.Lock()
	before, err := s.repo.Get(ctx, key)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		s.writeMu.Unlock()
		return model.Setting{}, storageErr("settings.update", err)
	}

	next := model.Setting{
		Key:         key,
		Value:       value,
		Description: before.Description,
		UpdatedAt:   s.clock.Now(),
	}
	if err := s.repo.Upsert(ctx, next); err != nil {
		s.writeMu.Unlock()
		return model.Setting{}, storageErr("settings.update", err)
	}
	s.mu.Lock()
	s.cache[key] = next
	s.gen++
	s.mu.Unlock()
	s.writeMu.Unlock()

	s.audit(ctx, actorID, before, next)
	return next, nil
}

// 監査ログの失敗で設定変更は取り消さない
func (s *SettingsStore) audit(ctx context.Context, actorID int64, before, after model.Setting) {
	if s.audits == nil {
		return
	}
	b, _ := json.Marshal(map[string]string{"value": before.Value})
	a, _ := json.Marshal(map[string]string{"value": after.Value})
	err := s.audits.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       model.AuditActionUpdateSetting,
		ResourceType: model.AuditResourceSetting,
		ResourceID:   after.Key,
		BeforeJSON:   string(b),
		AfterJSON:    string(a),
		CreatedAt:    after.UpdatedAt,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("audit log write failed", "key", after.Key, "error", err)
	}
}

func validateSetting(key, value string) error {
	const op = "settings.validate"
	switch key {
	case model.SettingTenantPercentage, model.SettingPlatformPercentage,
		model.SettingCheckoutPercentage, model.SettingTaxRate:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return apperr.New(apperr.KindValidation, op, key+" must be a number").With("key", key)
		}
		if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
			return apperr.New(apperr.KindValidation, op, key+" must be between 0 and 100").With("key", key)
		}
	case model.SettingQRExpiryMinutes:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			return apperr.New(apperr.KindValidation, op, key+" must be a positive integer").With("key", key)
		}
	case model.SettingPaymentTolerance:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return apperr.New(apperr.KindValidation, op, key+" must be a non-negative integer").With("key", key)
		}
	default:
		return apperr.Newf(apperr.KindValidation, op, "unknown setting %q", key).With("key", key)
	}
	return nil
}
