package lodging

import "github.com/xraph/lodging/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// Month is re-exported from types package.
type Month = types.Month

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Money constructors
var (
	VND  = types.VND
	USD  = types.USD
	EUR  = types.EUR
	Zero = types.Zero
	Sum  = types.Sum
)

// Re-export Month constructors
var (
	MonthOf    = types.MonthOf
	ParseMonth = types.ParseMonth
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
