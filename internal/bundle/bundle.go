// Package bundle loads trace bundles written by an external collector and
// exposes them as artifact sources.
package bundle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
)

// MaxBundleBytes caps the decompressed size of a bundle. Traces of very
// large pages stay well below it; a compressed file expanding past it is
// rejected.
const MaxBundleBytes = 512 << 20

// maxBundleBytes is MaxBundleBytes, lowered by tests.
var maxBundleBytes int64 = MaxBundleBytes

// Source is an ArtifactSource backed by a decoded bundle.
type Source struct {
	id     string
	digest string
	bundle *schema.Bundle
}

var _ contract.ArtifactSource = &Source{} // Compile-time check

// NewSource wraps an already decoded bundle.
func NewSource(id, digest string, b *schema.Bundle) *Source {
	return &Source{id: id, digest: digest, bundle: b}
}

// Load reads, decompresses and validates a bundle file.
func Load(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	defer func() { _ = f.Close() }()

	src, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("bundle %s: %w", path, err)
	}
	src.id = path
	return src, nil
}

// Decode reads a possibly compressed bundle from r.
func Decode(r io.Reader) (*Source, error) {
	reader, closeFn, err := decompressingReader(r)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	data, err := io.ReadAll(io.LimitReader(reader, maxBundleBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	if int64(len(data)) > maxBundleBytes {
		return nil, fmt.Errorf("%w: more than %d bytes once decompressed", schema.ErrBundleTooLarge, maxBundleBytes)
	}

	var b schema.Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	if err := validate(&b); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	return NewSource("", hex.EncodeToString(sum[:]), &b), nil
}

// validate rejects task durations the aggregator cannot sum.
func validate(b *schema.Bundle) error {
	if len(b.Passes) == 0 {
		return fmt.Errorf("bundle has no passes")
	}
	for name, pass := range b.Passes {
		for i, task := range pass.MainThreadTasks {
			if task.SelfTime < 0 || math.IsNaN(task.SelfTime) || math.IsInf(task.SelfTime, 0) {
				return fmt.Errorf("pass %s task %d: %w (%v)", name, i, schema.ErrNegativeDuration, task.SelfTime)
			}
		}
	}
	return nil
}

// ID implements the ArtifactSource interface.
func (s *Source) ID() string { return s.id }

// Digest implements the ArtifactSource interface.
func (s *Source) Digest() string { return s.digest }

// Settings implements the ArtifactSource interface.
func (s *Source) Settings() schema.Settings { return s.bundle.Settings }

// PageURL implements the ArtifactSource interface.
func (s *Source) PageURL() string { return s.bundle.URL }

// Bundle returns the decoded bundle.
func (s *Source) Bundle() *schema.Bundle { return s.bundle }

func (s *Source) pass(ctx context.Context, name string) (schema.PassArtifacts, error) {
	if err := ctx.Err(); err != nil {
		return schema.PassArtifacts{}, err
	}
	pass, ok := s.bundle.Passes[name]
	if !ok {
		return schema.PassArtifacts{}, fmt.Errorf("%w: %s", schema.ErrPassNotFound, name)
	}
	return pass, nil
}

// NetworkRecords implements the ArtifactSource interface.
func (s *Source) NetworkRecords(ctx context.Context, pass string) ([]schema.NetworkRecord, error) {
	p, err := s.pass(ctx, pass)
	if err != nil {
		return nil, err
	}
	if p.NetworkRecords == nil {
		return nil, fmt.Errorf("%w in pass %s", schema.ErrNoNetworkRecords, pass)
	}
	return p.NetworkRecords, nil
}

// MainThreadTasks implements the ArtifactSource interface.
func (s *Source) MainThreadTasks(ctx context.Context, pass string) ([]schema.MainThreadTask, error) {
	p, err := s.pass(ctx, pass)
	if err != nil {
		return nil, err
	}
	if p.MainThreadTasks == nil {
		return nil, fmt.Errorf("%w in pass %s", schema.ErrNoTasks, pass)
	}
	return p.MainThreadTasks, nil
}

// TBTImpactTasks implements the ArtifactSource interface.
func (s *Source) TBTImpactTasks(ctx context.Context, metric schema.MetricContext) ([]schema.TBTImpactTask, error) {
	p, err := s.pass(ctx, metric.Pass)
	if err != nil {
		return nil, err
	}
	if p.TBTImpactError != "" {
		return nil, fmt.Errorf("%w: %s", schema.ErrTBTUnavailable, p.TBTImpactError)
	}
	if p.TBTImpactTasks == nil {
		return nil, fmt.Errorf("%w: no tbt impact tasks in pass %s", schema.ErrTBTUnavailable, metric.Pass)
	}
	for i, task := range p.TBTImpactTasks {
		if task.SelfTBTImpact < 0 || math.IsNaN(task.SelfTBTImpact) || math.IsInf(task.SelfTBTImpact, 0) {
			return nil, fmt.Errorf("%w: task %d has impact %v", schema.ErrTBTUnavailable, i, task.SelfTBTImpact)
		}
	}
	return p.TBTImpactTasks, nil
}
