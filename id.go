package lodging

import "github.com/xraph/lodging/id"

// ID is the primary identifier type for all lodging entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
