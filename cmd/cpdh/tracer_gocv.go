//go:build gocv

package main

import (
	"cpdh-retrieval/internal/config"
	"cpdh-retrieval/internal/contour"
	"cpdh-retrieval/internal/dataset"
)

func newTracer(cfg *config.Config) (dataset.Tracer, error) {
	if cfg.Tracer == config.TracerGocv {
		return contour.NewGocvTracer(cfg.Threshold), nil
	}
	return contour.NewTracer(cfg.Threshold), nil
}
