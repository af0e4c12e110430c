package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/fingerprint"
)

// canonicalDevice fixes the field order of the hashed document.
type canonicalDevice struct {
	UserAgent        string `json:"userAgent"`
	ScreenResolution string `json:"screenResolution"`
	Timezone         string `json:"timezone"`
	Language         string `json:"language"`
	Platform         string `json:"platform"`
	Timestamp        string `json:"timestamp"`
}

// history is a fixed-capacity ring of the most recent fingerprints.
type history struct {
	entries [fingerprint.HistorySize]fingerprint.Fingerprint
	next    int
	size    int
}

func (h *history) push(fp fingerprint.Fingerprint) {
	h.entries[h.next] = fp
	h.next = (h.next + 1) % len(h.entries)
	if h.size < len(h.entries) {
		h.size++
	}
}

// list returns the retained entries, oldest first.
func (h *history) list() []fingerprint.Fingerprint {
	out := make([]fingerprint.Fingerprint, 0, h.size)
	start := (h.next - h.size + len(h.entries)) % len(h.entries)
	for i := 0; i < h.size; i++ {
		out = append(out, h.entries[(start+i)%len(h.entries)])
	}
	return out
}

func (h *history) latest() (fingerprint.Fingerprint, bool) {
	if h.size == 0 {
		return fingerprint.Fingerprint{}, false
	}
	return h.entries[(h.next-1+len(h.entries))%len(h.entries)], true
}

type FingerprintAnalyzerImpl struct {
	mu        sync.RWMutex
	histories map[string]*history
}

func NewFingerprintAnalyzer() fingerprint.Analyzer {
	return &FingerprintAnalyzerImpl{
		histories: make(map[string]*history),
	}
}

// Generate implements fingerprint.Analyzer.
func (a *FingerprintAnalyzerImpl) Generate(descriptor attendance.DeviceDescriptor, capturedAt time.Time) (fingerprint.Fingerprint, error) {
	doc, err := json.Marshal(canonicalDevice{
		UserAgent:        descriptor.UserAgent,
		ScreenResolution: descriptor.ScreenResolution,
		Timezone:         descriptor.Timezone,
		Language:         descriptor.Language,
		Platform:         descriptor.Platform,
		Timestamp:        capturedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fingerprint.Fingerprint{}, fmt.Errorf("failed to serialize device descriptor: %w", err)
	}

	sum := sha256.Sum256(doc)

	return fingerprint.Fingerprint{
		Hash:      hex.EncodeToString(sum[:]),
		Snapshot:  descriptor,
		CreatedAt: capturedAt,
	}, nil
}

// DetectAnomaly implements fingerprint.Analyzer.
func (a *FingerprintAnalyzerImpl) DetectAnomaly(employeeID string, current fingerprint.Fingerprint) fingerprint.Anomaly {
	a.mu.RLock()
	defer a.mu.RUnlock()

	h, ok := a.histories[employeeID]
	if !ok || h.size == 0 {
		return fingerprint.Anomaly{Reason: "first device fingerprint, recorded as baseline"}
	}

	for _, past := range h.list() {
		if past.Hash == current.Hash {
			return fingerprint.Anomaly{Reason: "known device fingerprint"}
		}
	}

	latest, _ := h.latest()
	diffs := compareSnapshots(latest.Snapshot, current.Snapshot)

	if len(diffs) > fingerprint.MaxAttributeChanges {
		return fingerprint.Anomaly{
			IsAnomalous: true,
			Reason:      fmt.Sprintf("device changed: %d attributes differ (%s)", len(diffs), strings.Join(diffs, ", ")),
			Differences: diffs,
		}
	}

	anomaly := fingerprint.Anomaly{Differences: diffs}
	if len(diffs) == 0 {
		anomaly.Reason = "same device attributes as last check"
	} else {
		anomaly.Reason = fmt.Sprintf("minor device changes (%s)", strings.Join(diffs, ", "))
	}
	return anomaly
}

// Record implements fingerprint.Analyzer.
func (a *FingerprintAnalyzerImpl) Record(employeeID string, fp fingerprint.Fingerprint) {
	a.mu.Lock()
	defer a.mu.Unlock()

	h, ok := a.histories[employeeID]
	if !ok {
		h = &history{}
		a.histories[employeeID] = h
	}
	h.push(fp)
}

// History implements fingerprint.Analyzer.
func (a *FingerprintAnalyzerImpl) History(employeeID string) []fingerprint.Fingerprint {
	a.mu.RLock()
	defer a.mu.RUnlock()

	h, ok := a.histories[employeeID]
	if !ok {
		return nil
	}
	return h.list()
}

func compareSnapshots(prev, curr attendance.DeviceDescriptor) []string {
	var diffs []string
	if prev.UserAgent != curr.UserAgent {
		diffs = append(diffs, fingerprint.AttrUserAgent)
	}
	if prev.ScreenResolution != curr.ScreenResolution {
		diffs = append(diffs, fingerprint.AttrScreenResolution)
	}
	if prev.Timezone != curr.Timezone {
		diffs = append(diffs, fingerprint.AttrTimezone)
	}
	if prev.Language != curr.Language {
		diffs = append(diffs, fingerprint.AttrLanguage)
	}
	if prev.Platform != curr.Platform {
		diffs = append(diffs, fingerprint.AttrPlatform)
	}
	return diffs
}
