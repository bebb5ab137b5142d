// Package ent holds the generated entc client. Run `go generate ./...` to
// (re)generate it from ent/schema after editing any schema file.
package ent

//go:generate go run -mod=mod entgo.io/ent/cmd/ent generate ./schema
