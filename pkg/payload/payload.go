package payload

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-formsubmit/pkg/field"
)

// DefaultBucket receives fields that do not declare a destination bucket.
const DefaultBucket = "data"

// Body is the assembled request payload: a mapping from bucket name to a
// nested structure of scalars, sequences, file handles and instants. A cleaned
// body never contains nil branches or empty sequences; empty mappings are
// permitted.
type Body map[string]map[string]any

// Channel is one out-of-band data set that can be merged into the assembled
// body alongside field values: captured query parameters, the pagination
// cursor, or externally applied values. Required channels merge on every
// assembly; optional ones only when requested by name.
type Channel struct {
	Bucket   string
	Required bool
	Values   map[string]any
}

// Options configures one assembly pass.
type Options struct {
	// Sources backs the per-field "from" lookups.
	Sources field.Sources
	// Include names the optional channels to merge for this pass.
	Include []string
	// Channels holds the side-channel data sets keyed by inclusion name.
	Channels map[string]Channel
}

// Assemble converts bound fields into a nested, cleaned request body. Fields
// group by destination bucket, values extract per kind, declared source
// lookups apply, and side-channel data merges after field grouping so it may
// overwrite field-derived keys at the same path. Disabled fields do not
// contribute.
func Assemble(fields []field.Field, opts Options) (Body, error) {
	body := make(Body)

	for _, f := range fields {
		if f.Disabled || f.Name == "" {
			continue
		}

		value, ok, err := field.Extract(f)
		if err != nil {
			return nil, fmt.Errorf("payload: %w", err)
		}
		if !ok {
			continue
		}

		value, err = field.Transform(f, value, opts.Sources)
		if err != nil {
			return nil, fmt.Errorf("payload: %w", err)
		}

		bucket := f.Bucket
		if bucket == "" {
			bucket = DefaultBucket
		}
		if err := Set(root(body, bucket), f.Name, value); err != nil {
			return nil, fmt.Errorf("payload: field %q: %w", f.Name, err)
		}
	}

	for _, name := range mergeOrder(opts) {
		channel := opts.Channels[name]
		bucket := channel.Bucket
		if bucket == "" {
			bucket = DefaultBucket
		}
		dst := root(body, bucket)
		for key, value := range channel.Values {
			if err := Set(dst, key, value); err != nil {
				return nil, fmt.Errorf("payload: channel %q key %q: %w", name, key, err)
			}
		}
	}

	return CleanBody(body), nil
}

func root(body Body, bucket string) map[string]any {
	if _, ok := body[bucket]; !ok {
		body[bucket] = make(map[string]any)
	}
	return body[bucket]
}

// mergeOrder yields required channels first, then the explicitly requested
// optional ones in request order. A channel merges at most once.
func mergeOrder(opts Options) []string {
	if len(opts.Channels) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(opts.Channels))
	var order []string
	for name, channel := range opts.Channels {
		if channel.Required {
			seen[name] = struct{}{}
		}
	}
	// Map iteration order is unstable; required channels merge in sorted name
	// order so assembly stays deterministic.
	order = append(order, sortedKeys(seen)...)
	for _, name := range opts.Include {
		if _, ok := opts.Channels[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		order = append(order, name)
	}
	return order
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
