package lightgbm

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

// Booster is the text dump of a trained booster as written by
// Booster.model_to_string.
type Booster struct {
	Version             string
	NumClass            int
	NumTreePerIteration int
	MaxFeatureIdx       int
	Objective           Objective
	AverageOutput       bool
	FeatureNames        []string
	// FeatureInfos holds "[min:max]" for numeric features, the
	// colon-separated category codes for categorical ones and "none" for
	// unused ones.
	FeatureInfos []string
	Trees        []*Tree
	// Importances maps feature names to their split counts.
	Importances map[string]float64
	// PandasCategorical lists the category values of each categorical
	// feature, in feature order. Nil when the model was fitted without
	// pandas categories.
	PandasCategorical [][]any
}

// NumFeatures returns max_feature_idx + 1.
func (b *Booster) NumFeatures() int {
	return b.MaxFeatureIdx + 1
}

// IsCategorical reports whether feature i was declared categorical.
func (b *Booster) IsCategorical(i int) bool {
	if i >= len(b.FeatureInfos) {
		return false
	}
	info := b.FeatureInfos[i]
	return info != "none" && !strings.HasPrefix(info, "[")
}

// CategoricalIndex returns the position of feature i among the
// categorical features, or -1.
func (b *Booster) CategoricalIndex(i int) int {
	if !b.IsCategorical(i) {
		return -1
	}
	index := 0
	for j := 0; j < i; j++ {
		if b.IsCategorical(j) {
			index++
		}
	}
	return index
}

// ParseBooster reads a booster text dump.
func ParseBooster(r io.Reader) (*Booster, error) {
	reader := bufio.NewReader(r)
	header, err := readParamsUntilBlank(reader)
	if err != nil {
		return nil, err
	}
	if _, ok := header["version"]; !ok {
		return nil, errors.NewValueError("ParseBooster", "model format is not a booster dump")
	}

	b := &Booster{Version: header["version"], NumClass: 1, NumTreePerIteration: 1}
	if v, ok := header["num_class"]; ok && v != "" {
		if b.NumClass, err = header.toInt("num_class"); err != nil {
			return nil, err
		}
	}
	if v, ok := header["num_tree_per_iteration"]; ok && v != "" {
		if b.NumTreePerIteration, err = header.toInt("num_tree_per_iteration"); err != nil {
			return nil, err
		}
	}
	if b.MaxFeatureIdx, err = header.toInt("max_feature_idx"); err != nil {
		return nil, err
	}
	if b.Objective, err = ParseObjective(header["objective"]); err != nil {
		return nil, err
	}
	_, b.AverageOutput = header["average_output"]
	b.FeatureNames = strings.Fields(header["feature_names"])
	b.FeatureInfos = strings.Fields(header["feature_infos"])

	nTrees := -1
	if v, ok := header["tree_sizes"]; ok {
		nTrees = len(strings.Fields(v))
	}

	for i := 0; nTrees < 0 || i < nTrees; i++ {
		params, err := readParamsUntilBlank(reader)
		if err != nil {
			return nil, err
		}
		if len(params) == 0 || params.has("end of trees") {
			break
		}
		tree, err := newTree(params)
		if err != nil {
			return nil, errors.Wrapf(err, "tree %d", i)
		}
		b.Trees = append(b.Trees, tree)
	}
	if nTrees >= 0 && len(b.Trees) != nTrees {
		return nil, errors.NewSchemaSizeError("ParseBooster", "trees", nTrees, len(b.Trees))
	}

	if err := b.readTrailer(reader); err != nil {
		return nil, err
	}
	return b, nil
}

// readTrailer reads the feature importances and the pandas categories that
// follow the trees. Unknown sections are skipped.
func (b *Booster) readTrailer(reader *bufio.Reader) error {
	section := ""
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "feature_importances:":
			section = "importances"
			b.Importances = map[string]float64{}
		case line == "parameters:":
			section = "parameters"
		case line == "end of parameters" || line == "":
			section = ""
		case strings.HasPrefix(line, "pandas_categorical:"):
			var categories [][]any
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "pandas_categorical:")), &categories); err != nil {
				return errors.Wrap(err, "pandas_categorical")
			}
			b.PandasCategorical = categories
		case section == "importances":
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				v, err := strconv.ParseFloat(parts[1], 64)
				if err != nil {
					return errors.Wrapf(err, "feature importance %s", parts[0])
				}
				b.Importances[parts[0]] = v
			}
		}

		if err == io.EOF {
			return nil
		}
	}
}

type treeParams map[string]string

func (p treeParams) has(key string) bool {
	_, ok := p[key]
	return ok
}

// readParamsUntilBlank reads one blank-line separated block of key=value
// lines. Keys without a value, such as average_output, map to "".
func readParamsUntilBlank(reader *bufio.Reader) (treeParams, error) {
	params := make(treeParams)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "":
			if len(params) > 0 {
				return params, nil
			}
		case strings.HasPrefix(line, "Tree="), line == "tree":
			// section markers
		default:
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				params[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
			} else {
				params[line] = ""
			}
		}

		if err == io.EOF {
			return params, nil
		}
	}
}

func (p treeParams) toInt(key string) (int, error) {
	v, ok := p[key]
	if !ok {
		return 0, errors.Newf("key %s not found", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "key %s", key)
	}
	return n, nil
}

func (p treeParams) toFloat64Slice(key string) ([]float64, error) {
	v, ok := p[key]
	if !ok {
		return nil, errors.Newf("key %s not found", key)
	}
	parts := strings.Fields(v)
	result := make([]float64, 0, len(parts))
	for _, part := range parts {
		val, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "key %s", key)
		}
		result = append(result, val)
	}
	return result, nil
}

// toOptionalFloat64Slice returns nil for an absent key.
func (p treeParams) toOptionalFloat64Slice(key string) ([]float64, error) {
	if !p.has(key) {
		return nil, nil
	}
	return p.toFloat64Slice(key)
}

func (p treeParams) toIntSlice(key string) ([]int, error) {
	v, ok := p[key]
	if !ok {
		return nil, errors.Newf("key %s not found", key)
	}
	parts := strings.Fields(v)
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		val, err := strconv.ParseInt(part, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "key %s", key)
		}
		result = append(result, int(val))
	}
	return result, nil
}

func (p treeParams) toUint32Slice(key string) ([]uint32, error) {
	v, ok := p[key]
	if !ok {
		return nil, errors.Newf("key %s not found", key)
	}
	parts := strings.Fields(v)
	result := make([]uint32, 0, len(parts))
	for _, part := range parts {
		val, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "key %s", key)
		}
		result = append(result, uint32(val))
	}
	return result, nil
}
