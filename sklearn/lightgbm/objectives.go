package lightgbm

import (
	"strconv"
	"strings"

	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Objective is the objective line of a booster dump, such as
// "binary sigmoid:1" or "multiclass num_class:3".
type Objective struct {
	Name string
	// Sigmoid scales the raw score of binary objectives. Zero elsewhere.
	Sigmoid  float64
	NumClass int
}

// ParseObjective splits the objective name from its "key:value" options.
func ParseObjective(line string) (Objective, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Objective{}, errors.NewValueError("ParseObjective", "empty objective")
	}
	o := Objective{Name: fields[0], NumClass: 1}
	for _, option := range fields[1:] {
		parts := strings.SplitN(option, ":", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "sigmoid":
			v, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return Objective{}, errors.Wrapf(err, "objective %s", line)
			}
			o.Sigmoid = v
		case "num_class":
			v, err := strconv.Atoi(parts[1])
			if err != nil {
				return Objective{}, errors.Wrapf(err, "objective %s", line)
			}
			o.NumClass = v
		}
	}
	if o.IsBinary() && o.Sigmoid == 0 {
		o.Sigmoid = 1
	}
	return o, nil
}

func (o Objective) IsBinary() bool {
	switch o.Name {
	case "binary", "cross_entropy", "xentropy":
		return true
	}
	return false
}

func (o Objective) IsMulticlass() bool {
	return o.Name == "multiclass" || o.Name == "softmax"
}

// RegressionNormalization returns how the summed raw score of a regression
// objective maps to the prediction. Log-link objectives predict exp(score).
func (o Objective) RegressionNormalization() (pmml.NormalizationMethod, error) {
	switch o.Name {
	case "regression", "regression_l2", "l2", "mean_squared_error", "mse", "rmse",
		"regression_l1", "l1", "mean_absolute_error", "mae",
		"huber", "fair", "quantile", "mape",
		"lambdarank", "rank_xendcg":
		return pmml.NormalizationNone, nil
	case "poisson", "gamma", "tweedie":
		return pmml.NormalizationExp, nil
	}
	return "", errors.NewUnsupportedVariantError("LGBMRegressor", "objective "+o.Name)
}
