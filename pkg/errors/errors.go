// Package errors はコンバータ全体のエラーハンドリングと警告システムを提供します。
// すべてのエラーは cockroachdb/errors によりスタックトレースを保持し、
// 変換対象のオブジェクト（型キー）と属性名を構造化された情報として運びます。
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("skpmml-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// VersionWarning は学習ライブラリのバージョンが検証済みの範囲外である場合の警告です。
type VersionWarning struct {
	Owner     string
	Version   string
	Supported string
}

func (w *VersionWarning) Error() string {
	return fmt.Sprintf("%s was pickled with version %s, which is outside of the tested range %s", w.Owner, w.Version, w.Supported)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *VersionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("owner", w.Owner).
		Str("version", w.Version).
		Str("supported", w.Supported).
		Str("type", "VersionWarning")
}

// NewVersionWarning は新しいVersionWarningを作成します。
func NewVersionWarning(owner, version, supported string) *VersionWarning {
	return &VersionWarning{Owner: owner, Version: version, Supported: supported}
}

// DataConversionWarning は属性値の型が暗黙的に変換された場合に発生する警告です。
type DataConversionWarning struct {
	FromType string
	ToType   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	return fmt.Sprintf("data converted from %s to %s. Reason: %s", w.FromType, w.ToType, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("from_type", w.FromType).
		Str("to_type", w.ToType).
		Str("reason", w.Reason).
		Str("type", "DataConversionWarning")
}

// NewDataConversionWarning は新しいDataConversionWarningを作成します。
func NewDataConversionWarning(from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{FromType: from, ToType: to, Reason: reason}
}

// ===========================================================================
//
//	エラー種別
//
// ===========================================================================

// Kind は変換エラーの種別です。
type Kind int

const (
	KindUnknown Kind = iota
	KindAttributeMissing
	KindAttributeTypeMismatch
	KindUnsupportedEstimatorType
	KindUnsupportedRevision
	KindInvalidAttributeValue
	KindCapabilityCastFailure
	KindSchemaSizeMismatch
	KindUnsupportedAlgorithmVariant
)

func (k Kind) String() string {
	switch k {
	case KindAttributeMissing:
		return "AttributeMissing"
	case KindAttributeTypeMismatch:
		return "AttributeTypeMismatch"
	case KindUnsupportedEstimatorType:
		return "UnsupportedEstimatorType"
	case KindUnsupportedRevision:
		return "UnsupportedRevision"
	case KindInvalidAttributeValue:
		return "InvalidAttributeValue"
	case KindCapabilityCastFailure:
		return "CapabilityCastFailure"
	case KindSchemaSizeMismatch:
		return "SchemaSizeMismatch"
	case KindUnsupportedAlgorithmVariant:
		return "UnsupportedAlgorithmVariant"
	default:
		return "Unknown"
	}
}

// KindOf はエラーチェーンから最初に見つかった変換エラーの種別を返します。
func KindOf(err error) Kind {
	var (
		missing     *AttributeMissingError
		typeErr     *AttributeTypeError
		unsupported *UnsupportedEstimatorError
		revision    *UnsupportedRevisionError
		invalid     *InvalidAttributeValueError
		cast        *CapabilityCastError
		size        *SchemaSizeError
		variant     *UnsupportedVariantError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &missing):
		return KindAttributeMissing
	case errors.As(err, &typeErr):
		return KindAttributeTypeMismatch
	case errors.As(err, &unsupported):
		return KindUnsupportedEstimatorType
	case errors.As(err, &revision):
		return KindUnsupportedRevision
	case errors.As(err, &invalid):
		return KindInvalidAttributeValue
	case errors.As(err, &cast):
		return KindCapabilityCastFailure
	case errors.As(err, &size):
		return KindSchemaSizeMismatch
	case errors.As(err, &variant):
		return KindUnsupportedAlgorithmVariant
	default:
		return KindUnknown
	}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// AttributeMissingError は必須属性がオブジェクトに存在しない場合のエラーです。
type AttributeMissingError struct {
	Owner     string
	Attribute string
}

func (e *AttributeMissingError) Error() string {
	return fmt.Sprintf("skpmml: %s: attribute '%s' is missing", e.Owner, e.Attribute)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *AttributeMissingError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("owner", e.Owner).
		Str("attribute", e.Attribute).
		Str("type", "AttributeMissingError")
}

// NewAttributeMissingError は新しいAttributeMissingErrorを作成し、スタックトレースを付与します。
func NewAttributeMissingError(owner, attribute string) error {
	return errors.WithStack(&AttributeMissingError{Owner: owner, Attribute: attribute})
}

// AttributeTypeError は属性値の型が期待と異なる場合のエラーです。
type AttributeTypeError struct {
	Owner     string
	Attribute string
	Expected  string
	Actual    string
}

func (e *AttributeTypeError) Error() string {
	return fmt.Sprintf("skpmml: %s: attribute '%s' has wrong type. Expected %s, got %s", e.Owner, e.Attribute, e.Expected, e.Actual)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *AttributeTypeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("owner", e.Owner).
		Str("attribute", e.Attribute).
		Str("expected", e.Expected).
		Str("actual", e.Actual).
		Str("type", "AttributeTypeError")
}

// NewAttributeTypeError は新しいAttributeTypeErrorを作成し、スタックトレースを付与します。
func NewAttributeTypeError(owner, attribute, expected, actual string) error {
	return errors.WithStack(&AttributeTypeError{Owner: owner, Attribute: attribute, Expected: expected, Actual: actual})
}

// UnsupportedEstimatorError は型キーに対応するエンコーダが登録されていない場合のエラーです。
// Suggestion には最も近い登録済みの型キー（またはラッパー）が入ります。
type UnsupportedEstimatorError struct {
	TypeKey    string
	Suggestion string
}

func (e *UnsupportedEstimatorError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("skpmml: type '%s' is not supported. Did you mean '%s'?", e.TypeKey, e.Suggestion)
	}
	return fmt.Sprintf("skpmml: type '%s' is not supported", e.TypeKey)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedEstimatorError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type_key", e.TypeKey).
		Str("suggestion", e.Suggestion).
		Str("type", "UnsupportedEstimatorError")
}

// NewUnsupportedEstimatorError は新しいUnsupportedEstimatorErrorを作成し、スタックトレースを付与します。
func NewUnsupportedEstimatorError(typeKey, suggestion string) error {
	return errors.WithStack(&UnsupportedEstimatorError{TypeKey: typeKey, Suggestion: suggestion})
}

// UnsupportedRevisionError はバージョンと属性プローブのどちらでも
// エンコード方式を決定できなかった場合のエラーです。
type UnsupportedRevisionError struct {
	Owner   string
	Version string
	Probes  []string
}

func (e *UnsupportedRevisionError) Error() string {
	version := e.Version
	if version == "" {
		version = "unknown"
	}
	return fmt.Sprintf("skpmml: %s: unsupported revision (version %s, probed attributes [%s])", e.Owner, version, strings.Join(e.Probes, ", "))
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedRevisionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("owner", e.Owner).
		Str("version", e.Version).
		Strs("probes", e.Probes).
		Str("type", "UnsupportedRevisionError")
}

// NewUnsupportedRevisionError は新しいUnsupportedRevisionErrorを作成し、スタックトレースを付与します。
func NewUnsupportedRevisionError(owner, version string, probes []string) error {
	return errors.WithStack(&UnsupportedRevisionError{Owner: owner, Version: version, Probes: probes})
}

// InvalidAttributeValueError は属性値が許容された値の集合・定義域に含まれない場合のエラーです。
type InvalidAttributeValueError struct {
	Owner     string
	Attribute string
	Value     interface{}
	Allowed   []string
}

func (e *InvalidAttributeValueError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("skpmml: %s: attribute '%s' has invalid value %v. Expected one of [%s]", e.Owner, e.Attribute, e.Value, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("skpmml: %s: attribute '%s' has invalid value %v", e.Owner, e.Attribute, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidAttributeValueError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("owner", e.Owner).
		Str("attribute", e.Attribute).
		Interface("value", e.Value).
		Strs("allowed", e.Allowed).
		Str("type", "InvalidAttributeValueError")
}

// NewInvalidAttributeValueError は新しいInvalidAttributeValueErrorを作成し、スタックトレースを付与します。
func NewInvalidAttributeValueError(owner, attribute string, value interface{}, allowed ...string) error {
	return errors.WithStack(&InvalidAttributeValueError{Owner: owner, Attribute: attribute, Value: value, Allowed: allowed})
}

// CapabilityCastError はオブジェクトを要求された能力（Classifier など）として扱えない場合のエラーです。
type CapabilityCastError struct {
	Owner     string
	Actual    string
	Requested string
}

func (e *CapabilityCastError) Error() string {
	return fmt.Sprintf("skpmml: %s: cannot cast %s to %s", e.Owner, e.Actual, e.Requested)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *CapabilityCastError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("owner", e.Owner).
		Str("actual", e.Actual).
		Str("requested", e.Requested).
		Str("type", "CapabilityCastError")
}

// NewCapabilityCastError は新しいCapabilityCastErrorを作成し、スタックトレースを付与します。
func NewCapabilityCastError(owner, actual, requested string) error {
	return errors.WithStack(&CapabilityCastError{Owner: owner, Actual: actual, Requested: requested})
}

// SchemaSizeError は特徴量数・クラス数と係数行列などのサイズが一致しない場合のエラーです。
type SchemaSizeError struct {
	Op       string
	Subject  string
	Expected int
	Got      int
}

func (e *SchemaSizeError) Error() string {
	return fmt.Sprintf("skpmml: %s: size mismatch for %s. Expected %d, got %d", e.Op, e.Subject, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *SchemaSizeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("subject", e.Subject).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "SchemaSizeError")
}

// NewSchemaSizeError は新しいSchemaSizeErrorを作成し、スタックトレースを付与します。
func NewSchemaSizeError(op, subject string, expected, got int) error {
	return errors.WithStack(&SchemaSizeError{Op: op, Subject: subject, Expected: expected, Got: got})
}

// CheckSize は expected と got が一致しない場合に SchemaSizeError を返します。
func CheckSize(op, subject string, expected, got int) error {
	if expected != got {
		return NewSchemaSizeError(op, subject, expected, got)
	}
	return nil
}

// UnsupportedVariantError はアルゴリズムの特定の構成（マルチラベルのアンサンブルなど）が
// サポートされていない場合のエラーです。
type UnsupportedVariantError struct {
	Owner   string
	Variant string
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("skpmml: %s: unsupported algorithm variant: %s", e.Owner, e.Variant)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedVariantError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("owner", e.Owner).
		Str("variant", e.Variant).
		Str("type", "UnsupportedVariantError")
}

// NewUnsupportedVariantError は新しいUnsupportedVariantErrorを作成し、スタックトレースを付与します。
func NewUnsupportedVariantError(owner, variant string) error {
	return errors.WithStack(&UnsupportedVariantError{Owner: owner, Variant: variant})
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("skpmml: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ModelError はエンコード中に発生したエラーに、どの推定器をどの操作で
// 変換していたかという文脈を付与します。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("skpmml: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("skpmml: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrNotImplemented は機能が未実装の場合のエラーです。
	ErrNotImplemented = New("not implemented")

	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")
)
