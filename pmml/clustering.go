package pmml

import "encoding/xml"

type ClusteringModel struct {
	XMLName xml.Name `xml:"ClusteringModel"`
	ModelBase
	ModelClass        string `xml:"modelClass,attr"`
	NumberOfClusters  int    `xml:"numberOfClusters,attr"`
	ComparisonMeasure *ComparisonMeasure
	ClusteringFields  []*ClusteringField `xml:"ClusteringField"`
	Clusters          []*Cluster         `xml:"Cluster"`
}

func (m *ClusteringModel) Copy() Model {
	c := *m
	return &c
}

type ComparisonMeasure struct {
	XMLName          xml.Name  `xml:"ComparisonMeasure"`
	Kind             string    `xml:"kind,attr"`
	SquaredEuclidean *struct{} `xml:"squaredEuclidean"`
}

type ClusteringField struct {
	XMLName xml.Name `xml:"ClusteringField"`
	Field   string   `xml:"field,attr"`
}

type Cluster struct {
	XMLName xml.Name `xml:"Cluster"`
	ID      string   `xml:"id,attr"`
	Size    int      `xml:"size,attr,omitempty"`
	Array   *Array
}
