//go:build !gocv

package main

import (
	"fmt"

	"cpdh-retrieval/internal/config"
	"cpdh-retrieval/internal/contour"
	"cpdh-retrieval/internal/dataset"
)

func newTracer(cfg *config.Config) (dataset.Tracer, error) {
	if cfg.Tracer == config.TracerGocv {
		return nil, fmt.Errorf("gocv tracer not available: rebuild with -tags gocv")
	}
	return contour.NewTracer(cfg.Threshold), nil
}
