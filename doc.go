// Package skpmml converts fitted scikit-learn estimators to PMML 4.4.
//
// Python pickles cannot be read from Go, so the estimator is first dumped to
// JSON or YAML: every object becomes a mapping with a "__class__" key
// holding its type key, numpy arrays become {"__ndarray__": [...]}
// mappings, tuples {"__tuple__": [...]}, and shared objects are written once
// with "__id__" and referenced with {"__ref__": id}. Dumps may be zstd or
// gzip compressed.
//
// # Quick Start
//
//	f, err := os.Open("model.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	if err := skpmml.Convert(f, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
//
// # Packages
//
//   - converter: conversion of whole documents, batch conversion
//   - core/store: the attribute dump and its typed accessors
//   - core/model: estimator capabilities and the type registry
//   - core/schema: features, labels and the per-conversion encoder
//   - core/modelgraph, core/ensemble: model graph builders and post-passes
//   - pmml: the PMML document model and XML marshalling
//   - sklearn/...: one package per estimator family
//   - pkg/errors, pkg/log, pkg/config, pkg/metrics: ambient support
//
// # Errors
//
// Every conversion error carries a Kind (see errors.KindOf) naming the
// failing estimator type and attribute, for example:
//
//	skpmml: sklearn.linear_model.LogisticRegression: attribute 'coef_' is missing
//
// The command line tool lives in cmd/skpmml.
package skpmml
