// Package cutset holds ordered, unique-ID collections of cuts and the
// bulk operations that act on them: padding every member to a shared
// target, loading an attribute across the set, and reading or writing
// set files as JSONL or YAML.
package cutset
