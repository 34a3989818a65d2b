// Package cluster encodes scikit-learn k-means clusterers as PMML
// ClusteringModel elements.
package cluster

import (
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/skpmml/core/model"
	"github.com/YuminosukeSato/skpmml/core/modelgraph"
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pmml"
)

const module = "sklearn.cluster"

// Output fields of a clustering model.
const (
	FieldCluster  = "cluster"
	FieldAffinity = "affinity"
)

// Register adds the k-means clusterers to r.
func Register(r *model.Registry) {
	r.Register(module, "KMeans", NewKMeans)
	r.Register(module, "MiniBatchKMeans", NewMiniBatchKMeans)
}

// KMeans はクラスタ中心との二乗ユークリッド距離で最も近いクラスタを予測する
type KMeans struct {
	model.Base
}

// NewKMeans は永続化オブジェクトから KMeans を作成する
func NewKMeans(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &KMeans{Base: model.NewBase(obj, r)}, nil
}

func (k *KMeans) Kind() model.Kind { return model.KindClusterer }

func (k *KMeans) MiningFunction() pmml.MiningFunction {
	return pmml.MiningFunctionClustering
}

// NumberOfFeatures は cluster_centers_ の列数を返す
func (k *KMeans) NumberOfFeatures() int {
	if shape, err := k.Object().GetArrayShape("cluster_centers_", 2); err == nil {
		return shape[1]
	}
	return k.Base.NumberOfFeatures()
}

func (k *KMeans) EncodeModel(s *schema.Schema) (pmml.Model, error) {
	centers, err := k.centers()
	if err != nil {
		return nil, err
	}
	sizes, err := k.sizes()
	if err != nil {
		return nil, err
	}
	return encodeClustering(k.TypeKey(), centers, sizes, s)
}

// centers は cluster_centers_ を (クラスタ数 x 特徴量数) の行列として読む
func (k *KMeans) centers() (*mat.Dense, error) {
	obj := k.Object()
	if _, err := obj.GetArrayShape("cluster_centers_", 2); err != nil {
		return nil, err
	}
	rows, cols, data, err := obj.GetMatrix("cluster_centers_")
	if err != nil {
		return nil, err
	}
	centers := mat.NewDense(rows, cols, data)
	if n, err := obj.GetInteger("n_clusters"); err == nil {
		if err := errors.CheckSize(obj.TypeKey(), "cluster_centers_", n, rows); err != nil {
			return nil, err
		}
	}
	return centers, nil
}

// sizes counts the training samples per cluster from labels_. It returns
// nil when the labels were not kept.
func (k *KMeans) sizes() ([]int, error) {
	obj := k.Object()
	if obj.GetOptional("labels_") == nil {
		return nil, nil
	}
	labels, err := obj.GetIntegerArray("labels_")
	if err != nil {
		return nil, err
	}
	rows, _, _, err := obj.GetMatrix("cluster_centers_")
	if err != nil {
		return nil, err
	}
	sizes := make([]int, rows)
	for _, l := range labels {
		if l < 0 || l >= rows {
			return nil, errors.NewInvalidAttributeValueError(obj.TypeKey(), "labels_", l, "cluster index below "+strconv.Itoa(rows))
		}
		sizes[l]++
	}
	return sizes, nil
}

// MiniBatchKMeans shares the fitted state of KMeans.
type MiniBatchKMeans struct {
	KMeans
}

func NewMiniBatchKMeans(obj *store.Object, r *model.Registry) (model.Step, error) {
	return &MiniBatchKMeans{KMeans: KMeans{Base: model.NewBase(obj, r)}}, nil
}

func encodeClustering(owner string, centers *mat.Dense, sizes []int, s *schema.Schema) (*pmml.ClusteringModel, error) {
	rows, cols := centers.Dims()
	if err := s.CheckFeatures(owner, cols); err != nil {
		return nil, err
	}
	enc := s.Encoder()
	m := &pmml.ClusteringModel{
		ModelBase:         modelgraph.NewModelBase(pmml.MiningFunctionClustering, nil),
		ModelClass:        "centerBased",
		NumberOfClusters:  rows,
		ComparisonMeasure: &pmml.ComparisonMeasure{Kind: "distance", SquaredEuclidean: &struct{}{}},
	}
	for _, f := range s.Features() {
		cf, err := schema.ToContinuousFeature(f, enc)
		if err != nil {
			return nil, err
		}
		m.ClusteringFields = append(m.ClusteringFields, &pmml.ClusteringField{Field: cf.Name()})
	}

	fields := []*pmml.OutputField{
		modelgraph.PredictedField(FieldCluster, pmml.OpTypeCategorical, pmml.DataTypeString),
	}
	for i := 0; i < rows; i++ {
		id := strconv.Itoa(i)
		cluster := &pmml.Cluster{ID: id, Array: pmml.NewRealArray(mat.Row(nil, i, centers))}
		if sizes != nil {
			cluster.Size = sizes[i]
		}
		m.Clusters = append(m.Clusters, cluster)
		fields = append(fields, &pmml.OutputField{
			Name:     modelgraph.FieldName(FieldAffinity, id),
			OpType:   pmml.OpTypeContinuous,
			DataType: pmml.DataTypeDouble,
			Feature:  pmml.ResultAffinity,
			Value:    id,
		})
	}
	modelgraph.AddOutputFields(m, fields...)
	return m, nil
}
