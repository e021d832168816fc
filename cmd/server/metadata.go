package main

import (
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/metadata"
)

// setupMetadataRegistry registers the filterable entities.
func setupMetadataRegistry() *metadata.Registry {
	reg := metadata.NewRegistry()

	reg.Register(jobpost.Definition())

	return reg
}
