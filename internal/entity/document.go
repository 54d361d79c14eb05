package entity

import (
	"path/filepath"

	"github.com/tenderworks/tendertag/constants"
)

// Document is an opaque handle to one input file. Amendments carry a 1-based
// ordinal reflecting the order they were supplied; later ordinals are
// authoritative over earlier ones and over the primary.
type Document struct {
	Path    string                 `json:"path"`
	Name    string                 `json:"name"`
	Role    constants.DocumentRole `json:"role"`
	Ordinal int                    `json:"ordinal"`
}

// NewPrimary builds a primary-document handle. Multiple primaries keep their
// supplied order via ordinal.
func NewPrimary(path string, ordinal int) Document {
	return Document{
		Path:    path,
		Name:    filepath.Base(path),
		Role:    constants.RolePrimary,
		Ordinal: ordinal,
	}
}

// NewAmendment builds an amendment-document handle.
func NewAmendment(path string, ordinal int) Document {
	return Document{
		Path:    path,
		Name:    filepath.Base(path),
		Role:    constants.RoleAmendment,
		Ordinal: ordinal,
	}
}
