// Package property holds the building and floor hierarchy units belong to.
// The engine uses it for grouping and for scoping deletion checks.
package property

import (
	"strings"

	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/types"
)

type Building struct {
	types.Entity
	ID       id.BuildingID     `json:"id"`
	Name     string            `json:"name"`
	Address  string            `json:"address,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (b *Building) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return types.Invalid("name", "is required")
	}
	return nil
}

func (b *Building) Clone() *Building {
	c := *b
	if b.Metadata != nil {
		c.Metadata = make(map[string]string, len(b.Metadata))
		for k, v := range b.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

type Floor struct {
	types.Entity
	ID         id.FloorID    `json:"id"`
	BuildingID id.BuildingID `json:"building_id"`
	Name       string        `json:"name"`
	Level      int           `json:"level"`
}

func (f *Floor) Validate() error {
	switch {
	case f.BuildingID.IsNil():
		return types.Invalid("building_id", "is required")
	case strings.TrimSpace(f.Name) == "":
		return types.Invalid("name", "is required")
	}
	return nil
}
