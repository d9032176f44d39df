package typeschema

// Package typeschema turns structural type information into JSON Schema.
//
// It provides:
//
// - A unified intermediate representation (TypeID/Ref/Node/Graph) that both
//   compile-time and runtime introspectors populate
// - A cycle-safe graph builder shared by all introspectors (introspect/)
// - A deterministic Graph -> JSON Schema transformer covering Draft 2020-12,
//   OpenAPI 3.x and strict function-calling dialects (jsonschema/)
// - Two concrete front-ends: reflect-based (introspect/reflectscan) and
//   go/packages-based (introspect/srcscan)
//
// Design policy:
// - Keep only public APIs in the root package; the root package holds the IR
//   model, the Config value object, and annotation-based description lookup.
// - Place the output model and transformer under jsonschema/, introspection
//   under introspect/, and the CLI under cmd/typeschema.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	g, err := reflectscan.Scan(User{})
//	doc, err := jsonschema.Transform(g, "example.User", typeschema.Default())
//	data, err := json.Marshal(doc)
//
// A Graph is built once per generation request, consumed once by the
// transformer, and never shared across goroutines.
