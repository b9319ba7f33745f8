package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// 楽観ロックのバージョン不一致
	ErrConflict = errors.New("version conflict")
	// ユニーク制約違反
	ErrDuplicate = errors.New("duplicate key")
)
