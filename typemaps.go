package dcpipc

var (
	// intNames maps the integer types to their C names.
	intNames = map[Int]string{
		{Width: 1}:               "uint8_t",
		{Width: 2}:               "uint16_t",
		{Width: 4}:               "uint32_t",
		{Width: 8}:               "uint64_t",
		{Width: 1, Signed: true}: "int8_t",
		{Width: 2, Signed: true}: "int16_t",
		{Width: 4, Signed: true}: "int32_t",
		{Width: 8, Signed: true}: "int64_t",
	}

	// namedTypes maps C type names, including the aliases used in
	// firmware prototypes, to their wire types.
	namedTypes = map[string]Type{
		"uint8_t":  Uint8,
		"uint16_t": Uint16,
		"uint32_t": Uint32,
		"uint64_t": Uint64,
		"int8_t":   Int8,
		"int16_t":  Int16,
		"int32_t":  Int32,
		"int64_t":  Int64,
		"uint":     Uint32,
		"ulong":    Uint64,
		"int":      Int32,
		"long":     Int64,
		"bool":     Bool8,
		"float":    Float32,
		"double":   Float64,
		"FourCC":   FourCharCode,
	}
)

// LookupType returns the scalar wire type with the given C name.
func LookupType(name string) (Type, bool) {
	t, ok := namedTypes[name]
	return t, ok
}
