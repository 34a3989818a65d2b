package model

import (
	"sort"
	"strings"
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

// Constructor はオブジェクトからステップを構築する
type Constructor func(obj *store.Object, r *Registry) (Step, error)

// Registry は型キー (module, name) からコンストラクタへの対応表
type Registry struct {
	mu       sync.RWMutex
	ctors    map[string]Constructor
	keywords map[string]KeywordConstructor
}

// NewRegistry は空のレジストリを作成する
func NewRegistry() *Registry {
	return &Registry{
		ctors:    map[string]Constructor{},
		keywords: map[string]KeywordConstructor{},
	}
}

// Register はコンストラクタを登録する。モジュールは公開名で登録する
func (r *Registry) Register(module, name string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[module+"."+name] = ctor
}

// RegisterKeyword は "drop" のような文字列で指定される変換器を登録する
func (r *Registry) RegisterKeyword(keyword string, ctor KeywordConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keywords[keyword] = ctor
}

// Keys は登録済みの型キーをソート順で返す
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.ctors))
	for k := range r.ctors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PublicModule は "sklearn.linear_model._logistic" のような非公開サブモジュールを
// 公開モジュール "sklearn.linear_model" に正規化する
func PublicModule(module string) string {
	segments := strings.Split(module, ".")
	kept := segments[:0]
	for _, s := range segments {
		if strings.HasPrefix(s, "_") {
			continue
		}
		kept = append(kept, s)
	}
	return strings.Join(kept, ".")
}

func (r *Registry) lookup(obj *store.Object) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ctor, ok := r.ctors[obj.TypeKey()]; ok {
		return ctor, true
	}
	// 旧リリースの公開サブモジュール (sklearn.ensemble.forest) は親モジュールで探す
	module := PublicModule(obj.Module())
	for module != "" {
		if ctor, ok := r.ctors[module+"."+obj.Name()]; ok {
			return ctor, true
		}
		i := strings.LastIndexByte(module, '.')
		if i < 0 {
			break
		}
		module = module[:i]
	}
	return nil, false
}

// Construct はオブジェクトの型キーに対応するステップを構築する
func (r *Registry) Construct(obj *store.Object) (Step, error) {
	ctor, ok := r.lookup(obj)
	if !ok {
		return nil, errors.NewUnsupportedEstimatorError(obj.TypeKey(), r.suggest(obj))
	}
	return ctor(obj, r)
}

// suggest は未登録の型キーに最も近い登録済みキーを返す
func (r *Registry) suggest(obj *store.Object) string {
	best, bestDistance := "", -1
	for _, key := range r.Keys() {
		_, name := store.ParseTypeKey(key)
		if name == obj.Name() {
			return key
		}
		d := editDistance(strings.ToLower(name), strings.ToLower(obj.Name()))
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = key, d
		}
	}
	// 名前の半分以上が異なる場合は提案しない
	if bestDistance < 0 || bestDistance*2 > len(obj.Name()) {
		return ""
	}
	return best
}

// editDistance はdiff-match-patchの差分から編集距離を求める
func editDistance(a, b string) int {
	dmp := diffmatchpatch.New()
	return dmp.DiffLevenshtein(dmp.DiffMain(a, b, false))
}

// AsEstimator はオブジェクトを推定器として構築する
func (r *Registry) AsEstimator(obj *store.Object) (Estimator, error) {
	step, err := r.Construct(obj)
	if err != nil {
		return nil, err
	}
	e, ok := step.(Estimator)
	if !ok {
		return nil, errors.NewCapabilityCastError(obj.TypeKey(), stepShape(step), "Estimator")
	}
	return e, nil
}

// AsClassifier はオブジェクトを分類器として構築する
func (r *Registry) AsClassifier(obj *store.Object) (Classifier, error) {
	e, err := r.AsEstimator(obj)
	if err != nil {
		return nil, err
	}
	c, ok := e.(Classifier)
	if !ok || e.Kind() != KindClassifier {
		return nil, errors.NewCapabilityCastError(obj.TypeKey(), stepShape(e), "Classifier")
	}
	return c, nil
}

// AsRegressor はオブジェクトを回帰器として構築する
func (r *Registry) AsRegressor(obj *store.Object) (Estimator, error) {
	e, err := r.AsEstimator(obj)
	if err != nil {
		return nil, err
	}
	if e.Kind() != KindRegressor {
		return nil, errors.NewCapabilityCastError(obj.TypeKey(), stepShape(e), "Regressor")
	}
	return e, nil
}

// AsTransformer は値を変換器として構築する。値は永続化オブジェクトか
// 登録済みのキーワード ("drop", "passthrough") のどちらか
func (r *Registry) AsTransformer(v any) (Transformer, error) {
	switch v := v.(type) {
	case string:
		r.mu.RLock()
		ctor, ok := r.keywords[v]
		r.mu.RUnlock()
		if !ok {
			return nil, errors.NewUnsupportedEstimatorError(v, "")
		}
		return ctor(), nil
	case *store.Object:
		step, err := r.Construct(v)
		if err != nil {
			return nil, err
		}
		t, ok := step.(Transformer)
		if !ok {
			return nil, errors.NewCapabilityCastError(v.TypeKey(), stepShape(step), "Transformer")
		}
		return t, nil
	case nil:
		return r.AsTransformer("passthrough")
	}
	return nil, errors.NewCapabilityCastError("step", typeOf(v), "Transformer")
}

func stepShape(step Step) string {
	if e, ok := step.(Estimator); ok {
		return e.Kind().String()
	}
	if _, ok := step.(Transformer); ok {
		return "Transformer"
	}
	return "Step"
}

func typeOf(v any) string {
	switch v.(type) {
	case []any, store.Tuple:
		return "list"
	case *store.Dict:
		return "dict"
	}
	return "value"
}
