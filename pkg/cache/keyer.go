package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
)

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "kind:<digest>" where the digest covers the JSON encoding
// of the hashes and options. Both encode infallibly.
func hashKey(kind string, hashes any, opts BuildKeyOpts) string {
	data, _ := json.Marshal(struct {
		Inputs any          `json:"inputs"`
		Opts   BuildKeyOpts `json:"opts"`
	}{hashes, opts})
	return kind + ":" + Hash(data)
}

// Keyer derives cache keys from content hashes and options.
type Keyer interface {
	// BuildKey identifies the DAG built from one tree input.
	BuildKey(inputHash string, opts BuildKeyOpts) string

	// MergeKey identifies the DAG merged from a set of inputs. Input order
	// does not matter because merging is commutative.
	MergeKey(inputHashes []string, opts BuildKeyOpts) string
}

// BuildKeyOpts holds the options that change a built DAG.
type BuildKeyOpts struct {
	Reference string `json:"reference"`
	Collapse  bool   `json:"collapse"`
}

// DefaultKeyer hashes inputs and options into "build:" and "merge:" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// BuildKey implements [Keyer].
func (DefaultKeyer) BuildKey(inputHash string, opts BuildKeyOpts) string {
	return hashKey("build", inputHash, opts)
}

// MergeKey implements [Keyer].
func (DefaultKeyer) MergeKey(inputHashes []string, opts BuildKeyOpts) string {
	sorted := slices.Clone(inputHashes)
	slices.Sort(sorted)
	return hashKey("merge", sorted, opts)
}

// Options selects and configures a backend for [Open].
type Options struct {
	Backend string // "file", "redis" or "none"
	Dir     string
	Redis   RedisConfig
}

// Open creates the cache backend named by opts.Backend. An empty backend
// means "none".
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", "none":
		return NewNullCache(), nil
	case "file":
		return NewFileCache(opts.Dir)
	case "redis":
		return NewRedisCache(ctx, opts.Redis)
	default:
		return nil, &unknownBackendError{name: opts.Backend}
	}
}

type unknownBackendError struct{ name string }

func (e *unknownBackendError) Error() string { return ErrUnknownBackend.Error() + ": " + e.name }
func (e *unknownBackendError) Unwrap() error { return ErrUnknownBackend }
