package llmclient

// Regenerate the gRPC client/server stubs into ./genpb after editing
// proto/llmclient.proto. Not committed, same convention as ent's
// generated client (see ent/generate.go) — the schema/IDL is the
// checked-in source of truth, the generated Go is a build artifact.
//go:generate protoc --go_out=. --go_opt=module=github.com/fourthplaces/rootsignal/internal/llmclient --go-grpc_out=. --go-grpc_opt=module=github.com/fourthplaces/rootsignal/internal/llmclient proto/llmclient.proto
