package config

import "os"

// ExpandEnv expands ${VAR}/$VAR references in raw YAML bytes before
// parsing, so api_key_env-style secrets never live in the YAML file
// itself — the same pre-parse expansion pass the teacher's
// pkg/config.ExpandEnv runs. Missing variables expand to empty string;
// Validator.ValidateAll is what catches a field left empty by a missing
// variable, not this function.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
