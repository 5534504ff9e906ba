package jinjaspan

// registerBuiltinTags exists for symmetry with registerBuiltinFilters/
// Tests/Functions; every built-in tag (if/for/set/block/... and the
// SPEC_FULL.md §12 extras) is dispatched natively inside parser.go's
// parseBlockTag switch rather than through the Environment's tag-extension
// table, so there is nothing to register here. Environment.tags is reserved
// entirely for tags a caller registers via RegisterTag.
func registerBuiltinTags(e *Environment) {}
