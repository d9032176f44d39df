package typeschema

// Config controls how the transformer encodes nullability, required-ness,
// defaults and polymorphism. It is a plain value: construct it explicitly
// (usually via Default/Strict/OpenAPI) and pass it along; there is no
// process-wide default.
type Config struct {
	// RespectDefaultPresence makes required-ness presence-driven: a field is
	// required iff it has no declared default, independent of nullability.
	RespectDefaultPresence bool
	// RequireNullableFields applies only when RespectDefaultPresence is
	// false: true lists every field in required, false lists only
	// non-nullable fields.
	RequireNullableFields bool
	// UseUnionTypes encodes nullable scalars as a type array including
	// "null" (Draft 2020-12 style). Mutually exclusive with UseNullableField.
	UseUnionTypes bool
	// UseNullableField emits nullable: true beside the base type (legacy
	// OpenAPI style). Mutually exclusive with UseUnionTypes.
	UseNullableField bool
	// IncludeDiscriminator adds a required constant-valued "type" property
	// to every union subtype schema.
	IncludeDiscriminator bool
	// IncludeOpenAPIDiscriminator additionally emits the OpenAPI
	// discriminator object on the parent oneOf schema. Requires
	// IncludeDiscriminator.
	IncludeOpenAPIDiscriminator bool
}

// Validate enforces the Config invariants. The transformer calls it before
// doing any work, so an invalid combination never produces output.
func (c Config) Validate() error {
	if c.UseUnionTypes == c.UseNullableField {
		return ErrNullableEncoding
	}
	if c.IncludeOpenAPIDiscriminator && !c.IncludeDiscriminator {
		return ErrDiscriminatorConfig
	}
	return nil
}

// Default is the general-purpose preset: union-type nullability, defaults
// make a field optional, subtype discriminator properties included.
func Default() Config {
	return Config{
		RespectDefaultPresence: true,
		RequireNullableFields:  true,
		UseUnionTypes:          true,
		IncludeDiscriminator:   true,
	}
}

// Strict is the LLM function-calling preset: every field required including
// nullable ones, union-type nullability.
func Strict() Config {
	return Config{
		RequireNullableFields: true,
		UseUnionTypes:         true,
		IncludeDiscriminator:  true,
	}
}

// OpenAPI is the OpenAPI 3.x preset: nullable: true encoding, discriminator
// object on unions, defaults make a field optional.
func OpenAPI() Config {
	return Config{
		RespectDefaultPresence:      true,
		UseNullableField:            true,
		IncludeDiscriminator:        true,
		IncludeOpenAPIDiscriminator: true,
	}
}
