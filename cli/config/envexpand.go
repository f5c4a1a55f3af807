// Package config handles agent.yaml loading for the spectosoft CLI.
package config

import (
	"os"
	"regexp"
)

// envVarPattern matches ${VAR} and ${VAR:-default} references. agent.yaml
// uses these for secrets that must not live in the file: ingest tokens in
// endpoint headers, bucket names, listen addresses.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv substitutes environment variables into the raw config text
// before YAML parsing. ${VAR} becomes the variable's value; with a
// :-default suffix the default applies when the variable is unset or
// empty.
//
// An unset variable without a default expands to the empty string rather
// than failing here. Whether an empty value is acceptable is for the
// consumer to decide (the http uploader rejects an empty endpoint URL,
// the s3 uploader an empty bucket).
func ExpandEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		if len(m) < 2 {
			return match
		}

		if value, ok := os.LookupEnv(m[1]); ok && value != "" {
			return value
		}
		if len(m) >= 3 && m[2] != "" {
			return m[2]
		}
		return ""
	})
}
