package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rustyhook/rustyhook/internal/log"
	"github.com/rustyhook/rustyhook/pkg/cache"
	"github.com/rustyhook/rustyhook/pkg/download"
	"github.com/rustyhook/rustyhook/pkg/envspec"
	"github.com/rustyhook/rustyhook/pkg/platform"
)

// EnvStatus describes one environment's cache state for list.
type EnvStatus string

// Environment cache states.
const (
	EnvReady   EnvStatus = "ready"
	EnvStale   EnvStatus = "stale"
	EnvMissing EnvStatus = "missing"
)

// flight is one in-process build in progress; waiters block on done.
type flight struct {
	done   chan struct{}
	handle EnvHandle
	err    error
}

// Provisioner materializes environments with at-most-one concurrent build
// per fingerprint: an in-process flight map collapses duplicate requests,
// and an flock lease per fingerprint excludes other processes.
type Provisioner struct {
	root     *cache.Root
	index    *cache.Index
	runtimes *Runtimes
	platform platform.Probe
	noCache  bool
	retries  int

	mu      sync.Mutex
	flights map[string]*flight

	// installer lookup; swapped in tests to fake a language toolchain.
	installers func(language string) (installer, error)
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithNoCache disables the ready-marker shortcut and forces re-provisioning.
func WithNoCache(noCache bool) Option {
	return func(p *Provisioner) { p.noCache = noCache }
}

// WithRetries sets how many times a failed install is retried.
func WithRetries(retries int) Option {
	return func(p *Provisioner) { p.retries = retries }
}

// NewProvisioner creates a provisioner over one cache root. index may be nil
// when bookkeeping is not wanted.
func NewProvisioner(root *cache.Root, index *cache.Index, opts ...Option) *Provisioner {
	probe := platform.Current()
	p := &Provisioner{
		root:     root,
		index:    index,
		runtimes: NewRuntimes(root, download.NewManager(), probe),
		platform: probe,
		retries:  1,
		flights:  make(map[string]*flight),
	}
	p.installers = p.installerFor
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision returns the EnvHandle for spec, building the environment when no
// ready one exists. Concurrent calls for the same fingerprint share one build.
func (p *Provisioner) Provision(ctx context.Context, spec envspec.Spec) (EnvHandle, error) {
	inst, err := p.installers(spec.Language)
	if err != nil {
		return EnvHandle{}, err
	}

	// System hooks have no environment to build.
	if spec.Language == "system" {
		execPath, env, err := inst.Resolve(spec, "")
		if err != nil {
			return EnvHandle{}, err
		}
		return EnvHandle{ExecPath: execPath, Env: env, Fingerprint: spec.Fingerprint()}, nil
	}

	fp := spec.Fingerprint()
	envDir := p.root.EnvDir(spec.Language, fp)

	if !p.noCache && p.readyMatches(spec, fp) {
		return p.resolve(ctx, inst, spec, envDir, fp)
	}

	p.mu.Lock()
	if f, ok := p.flights[fp]; ok {
		p.mu.Unlock()
		select {
		case <-f.done:
			return f.handle, f.err
		case <-ctx.Done():
			return EnvHandle{}, ctx.Err()
		}
	}

	f := &flight{done: make(chan struct{})}
	p.flights[fp] = f
	p.mu.Unlock()

	f.handle, f.err = p.build(ctx, inst, spec, envDir, fp)
	close(f.done)

	p.mu.Lock()
	delete(p.flights, fp)
	p.mu.Unlock()

	return f.handle, f.err
}

// build holds the cross-process lease and performs the install with the
// configured retry budget.
func (p *Provisioner) build(ctx context.Context, inst installer, spec envspec.Spec, envDir, fp string) (EnvHandle, error) {
	lease := cache.NewLock(p.root.EnvLeasePath(spec.Language, fp))
	var handle EnvHandle

	err := lease.Do(ctx, func() error {
		// Another process may have completed the build while this one
		// waited on the lease.
		if !p.noCache && p.readyMatches(spec, fp) {
			var err error
			handle, err = p.resolve(ctx, inst, spec, envDir, fp)
			return err
		}

		var lastErr error
		for attempt := 0; attempt <= p.retries; attempt++ {
			if err := ctx.Err(); err != nil {
				p.cleanPartial(envDir)
				return err
			}

			if lastErr != nil {
				log.Warn("retrying environment build", "fingerprint", fp, "attempt", attempt)
			}

			lastErr = p.install(ctx, inst, spec, envDir, fp)
			if lastErr == nil {
				var err error
				handle, err = p.resolve(ctx, inst, spec, envDir, fp)
				return err
			}

			p.cleanPartial(envDir)
		}

		return fmt.Errorf("failed to provision %s environment: %w", spec.Language, lastErr)
	})
	if err != nil {
		return EnvHandle{}, err
	}
	return handle, nil
}

// install runs one build attempt and writes the ready marker on success.
func (p *Provisioner) install(ctx context.Context, inst installer, spec envspec.Spec, envDir, fp string) error {
	if p.noCache {
		// Forced re-provision: drop the marker so the stale tree is fair
		// game for removal.
		_ = os.Remove(p.root.ReadyPath(spec.Language, fp))
		p.cleanPartial(envDir)
	}

	if err := os.MkdirAll(envDir, 0o750); err != nil {
		return fmt.Errorf("failed to create environment directory: %w", err)
	}

	log.Info("provisioning environment", "language", spec.Language, "tool", spec.Tool, "fingerprint", fp[:12])
	if err := inst.Install(ctx, spec, envDir); err != nil {
		return err
	}

	return p.writeReadyMarker(spec, fp)
}

// writeReadyMarker records the spec atomically: staged write, then rename.
func (p *Provisioner) writeReadyMarker(spec envspec.Spec, fp string) error {
	readyPath := p.root.ReadyPath(spec.Language, fp)
	staging := readyPath + ".staging"

	if err := os.WriteFile(staging, []byte(spec.Canonical()), 0o600); err != nil {
		return fmt.Errorf("failed to write ready marker: %w", err)
	}
	if err := os.Rename(staging, readyPath); err != nil {
		return fmt.Errorf("failed to move ready marker into place: %w", err)
	}
	return nil
}

// readyMatches reports whether a completed build for exactly this spec is on
// disk: marker present and its recorded spec equal to the requested one.
func (p *Provisioner) readyMatches(spec envspec.Spec, fp string) bool {
	data, err := os.ReadFile(p.root.ReadyPath(spec.Language, fp))
	if err != nil {
		return false
	}

	recorded, err := envspec.Parse(string(data))
	if err != nil {
		return false
	}
	return recorded.Equal(spec)
}

// resolve produces the EnvHandle for a ready environment and refreshes the
// index bookkeeping.
func (p *Provisioner) resolve(ctx context.Context, inst installer, spec envspec.Spec, envDir, fp string) (EnvHandle, error) {
	execPath, env, err := inst.Resolve(spec, envDir)
	if err != nil {
		return EnvHandle{}, err
	}

	if p.index != nil {
		if err := p.index.RecordEnv(ctx, cache.EnvRecord{
			Fingerprint: fp,
			Language:    spec.Language,
			Spec:        spec.Canonical(),
			Path:        envDir,
			LastUsed:    time.Now(),
		}); err != nil {
			log.Warn("failed to update cache index", "error", err)
		}
	}

	return EnvHandle{ExecPath: execPath, Env: env, Fingerprint: fp}, nil
}

// cleanPartial removes a partially-built environment. Directories carrying a
// ready marker are never deleted here; that is clean's job.
func (p *Provisioner) cleanPartial(envDir string) {
	if _, err := os.Stat(filepath.Join(envDir, cache.ReadyMarker)); err == nil {
		return
	}
	if err := os.RemoveAll(envDir); err != nil {
		log.Warn("failed to remove partial environment", "dir", envDir, "error", err)
	}
}

// Status reports the cache state of the environment for spec.
func (p *Provisioner) Status(spec envspec.Spec) EnvStatus {
	if spec.Language == "system" {
		return EnvReady
	}

	fp := spec.Fingerprint()
	readyPath := p.root.ReadyPath(spec.Language, fp)
	data, err := os.ReadFile(readyPath)
	if err != nil {
		return EnvMissing
	}

	recorded, parseErr := envspec.Parse(string(data))
	if parseErr != nil || !recorded.Equal(spec) {
		return EnvStale
	}
	return EnvReady
}
