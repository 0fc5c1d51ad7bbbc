// Package install executes InstallPlans: per-resource download, integrity
// verification, atomic write, and history tracking, plus batch
// orchestration and rollback, per spec.md §4.7. Grounded on the teacher's
// AgentSynchronizer for the per-item/best-effort batch shape and on its
// LLM client's retry/backoff loop for the download path.
package install

import (
	"context"
	"net/http"
	"os"
	"time"

	"resourcehub/internal/config"
	"resourcehub/internal/logging"
	"resourcehub/internal/model"
	"resourcehub/internal/security"
)

// Outcome is the terminal state of a single resource's install attempt.
type Outcome struct {
	ID      string
	Event   EventKind
	Path    string
	SHA256  string
	Err     error
	Skipped bool
	Blocked bool
}

// Installer executes InstallPlans against a per-user base directory.
type Installer struct {
	cfg     *config.EngineConfig
	client  *http.Client
	history *History
}

// New constructs an Installer rooted at cfg.UserBase.
func New(cfg *config.EngineConfig) *Installer {
	return &Installer{
		cfg:     cfg,
		history: NewHistory(cfg.HistoryPath(), cfg.LockPath()),
	}
}

func (in *Installer) httpClient() *http.Client {
	if in.client == nil {
		in.client = newHTTPClient(in.cfg.HTTPConnectTimeout, in.cfg.HTTPTimeout)
	}
	return in.client
}

// downloadSizeCap bounds a single resource's body; resources are typically
// far smaller than a catalog entry file but may legitimately carry bundled
// assets, so the cap is a multiple of the catalog file cap rather than
// reusing it directly.
func (in *Installer) downloadSizeCap() int64 {
	return in.cfg.MaxCatalogBytes * 64
}

// InstallOne executes the seven steps of spec.md §4.7 for a single
// resource. Already-installed detection compares the existing file's
// sha256 against the resource's declared sha256 when present.
func (in *Installer) InstallOne(ctx context.Context, r *model.Resource, forced bool, sink Sink) Outcome {
	sink = sinkOrNoop(sink)
	sink.Notify(Event{Kind: EventStarted, ID: r.ID})

	finalPath, err := security.ValidatePath(r.InstallPath, in.cfg.UserBase)
	if err != nil {
		sink.Notify(Event{Kind: EventFailed, ID: r.ID, Err: err})
		return Outcome{ID: r.ID, Event: EventFailed, Err: err}
	}

	if !forced && r.Source.SHA256 != "" && alreadyInstalled(finalPath, r.Source.SHA256) {
		sink.Notify(Event{Kind: EventSkipped, ID: r.ID})
		return Outcome{ID: r.ID, Event: EventSkipped, Path: finalPath, Skipped: true}
	}

	if _, err := security.ValidateURL(r.Source.URL, in.cfg.URLAllowlist); err != nil {
		sink.Notify(Event{Kind: EventFailed, ID: r.ID, Err: err})
		return Outcome{ID: r.ID, Event: EventFailed, Err: err}
	}

	data, err := downloadWithRetry(ctx, in.httpClient(), r.Source.URL, in.downloadSizeCap(), in.cfg.MaxRetries)
	if err != nil {
		sink.Notify(Event{Kind: EventFailed, ID: r.ID, Err: err})
		return Outcome{ID: r.ID, Event: EventFailed, Err: err}
	}
	sink.Notify(Event{Kind: EventDownloaded, ID: r.ID, Bytes: int64(len(data))})

	actualSHA := security.SHA256Hex(data)
	if r.Source.SHA256 != "" {
		if err := security.VerifySHA256(data, r.Source.SHA256); err != nil {
			sink.Notify(Event{Kind: EventFailed, ID: r.ID, Err: err})
			return Outcome{ID: r.ID, Event: EventFailed, Err: err}
		}
	}
	sink.Notify(Event{Kind: EventVerified, ID: r.ID})

	if _, err := preserveExisting(finalPath); err != nil {
		sink.Notify(Event{Kind: EventFailed, ID: r.ID, Err: err})
		return Outcome{ID: r.ID, Event: EventFailed, Err: err}
	}
	if err := atomicWrite(finalPath, data); err != nil {
		sink.Notify(Event{Kind: EventFailed, ID: r.ID, Err: err})
		return Outcome{ID: r.ID, Event: EventFailed, Err: err}
	}

	rec := model.InstallRecord{
		ID:          r.ID,
		Version:     r.Version,
		SHA256:      actualSHA,
		InstalledAt: time.Now().UTC().Format(time.RFC3339),
		Path:        finalPath,
	}
	if err := in.history.Append(rec); err != nil {
		logging.Get(logging.CategoryInstall).Warn("failed to append history for %s: %v", r.ID, err)
	}

	sink.Notify(Event{Kind: EventInstalled, ID: r.ID})
	return Outcome{ID: r.ID, Event: EventInstalled, Path: finalPath, SHA256: actualSHA}
}

func alreadyInstalled(path, expectedSHA string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return security.VerifySHA256(data, expectedSHA) == nil
}

// Installed returns every InstallRecord from the per-user history.
func (in *Installer) Installed() ([]model.InstallRecord, error) {
	return in.history.All()
}

// CompactHistory rewrites the history file keeping only the most recent
// record per resource id.
func (in *Installer) CompactHistory() error {
	return in.history.Compact()
}
