// Package apperr はコアが返すエラーの種類（Kind）を定義する。
// HTTP層はKindごとに固定のステータスへ変換する。
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// 入力不正（呼び出し側の問題、リトライしない）
	KindValidation Kind = "VALIDATION_ERROR"

	// 状態遷移として不正（最新状態を取り直してから）
	KindState    Kind = "STATE_ERROR"
	KindNotFound Kind = "NOT_FOUND"

	// QRトークンの期限切れ / 使用済み
	KindExpired         Kind = "EXPIRED"
	KindAlreadyConsumed Kind = "ALREADY_CONSUMED"

	// カウンター満員（時間をおいて再試行）
	KindCapacity Kind = "CAPACITY"

	// 同時更新に負けた（最新状態で1回だけ再試行可）
	KindConflict Kind = "CONFLICT"

	// 設定値の不備（運用者が直す）
	KindConfig Kind = "CONFIG_ERROR"

	// ストレージ側の一時障害
	KindStorageUnavailable Kind = "STORAGE_UNAVAILABLE"
)

// Error は種類つきのエラー。Details は呼び出し側に返す構造化情報。
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// With は Details を1件追加して自分を返す。
func (e *Error) With(key, value string) *Error {
	if e.Details == nil {
		e.Details = map[string]string{}
	}
	e.Details[key] = value
	return e
}

func As(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}

// KindOf は err の Kind を返す。種類のないエラーは空文字。
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
