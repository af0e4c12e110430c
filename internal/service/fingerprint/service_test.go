package fingerprint

import (
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	baseTime = time.Date(2026, 3, 2, 8, 55, 0, 0, time.UTC)

	iphone = attendance.DeviceDescriptor{
		UserAgent:        "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X)",
		ScreenResolution: "390x844",
		Timezone:         "Asia/Taipei",
		Language:         "zh-TW",
		Platform:         "iPhone",
	}
)

func TestGenerate_Deterministic(t *testing.T) {
	a := NewFingerprintAnalyzer()

	fp1, err := a.Generate(iphone, baseTime)
	require.NoError(t, err)
	fp2, err := a.Generate(iphone, baseTime)
	require.NoError(t, err)

	assert.Equal(t, fp1.Hash, fp2.Hash)
	assert.Len(t, fp1.Hash, 64)
	assert.Equal(t, iphone, fp1.Snapshot)
}

func TestGenerate_CaptureTimeChangesHash(t *testing.T) {
	a := NewFingerprintAnalyzer()

	fp1, _ := a.Generate(iphone, baseTime)
	fp2, _ := a.Generate(iphone, baseTime.Add(time.Millisecond))

	assert.NotEqual(t, fp1.Hash, fp2.Hash)
}

func TestDetectAnomaly_FirstFingerprintIsBaseline(t *testing.T) {
	a := NewFingerprintAnalyzer()
	fp, _ := a.Generate(iphone, baseTime)

	anomaly := a.DetectAnomaly("emp-1", fp)

	assert.False(t, anomaly.IsAnomalous)
	assert.Empty(t, anomaly.Differences)
}

func TestDetectAnomaly_AttributeChanges(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(d *attendance.DeviceDescriptor)
		anomalous bool
		diffs     []string
	}{
		{
			name:      "same device new capture",
			mutate:    func(d *attendance.DeviceDescriptor) {},
			anomalous: false,
			diffs:     nil,
		},
		{
			name:      "one attribute",
			mutate:    func(d *attendance.DeviceDescriptor) { d.Language = "en-US" },
			anomalous: false,
			diffs:     []string{fingerprint.AttrLanguage},
		},
		{
			name: "two attributes",
			mutate: func(d *attendance.DeviceDescriptor) {
				d.Language = "en-US"
				d.Timezone = "UTC"
			},
			anomalous: false,
			diffs:     []string{fingerprint.AttrTimezone, fingerprint.AttrLanguage},
		},
		{
			name: "three attributes",
			mutate: func(d *attendance.DeviceDescriptor) {
				d.UserAgent = "Mozilla/5.0 (Linux; Android 14; Pixel 8)"
				d.ScreenResolution = "412x915"
				d.Platform = "Linux armv8l"
			},
			anomalous: true,
			diffs:     []string{fingerprint.AttrUserAgent, fingerprint.AttrScreenResolution, fingerprint.AttrPlatform},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := NewFingerprintAnalyzer()
			baseline, _ := a.Generate(iphone, baseTime)
			a.Record("emp-1", baseline)

			next := iphone
			c.mutate(&next)
			fp, _ := a.Generate(next, baseTime.Add(24*time.Hour))

			anomaly := a.DetectAnomaly("emp-1", fp)

			assert.Equal(t, c.anomalous, anomaly.IsAnomalous)
			assert.Equal(t, c.diffs, anomaly.Differences)
			if c.anomalous {
				assert.Contains(t, anomaly.Reason, "3 attributes")
			}
		})
	}
}

func TestDetectAnomaly_ComparesAgainstMostRecent(t *testing.T) {
	a := NewFingerprintAnalyzer()
	android := attendance.DeviceDescriptor{
		UserAgent:        "Mozilla/5.0 (Linux; Android 14; Pixel 8)",
		ScreenResolution: "412x915",
		Timezone:         "Asia/Taipei",
		Language:         "zh-TW",
		Platform:         "Linux armv8l",
	}

	first, _ := a.Generate(iphone, baseTime)
	a.Record("emp-1", first)
	second, _ := a.Generate(android, baseTime.Add(time.Hour))
	a.Record("emp-1", second)

	fp, _ := a.Generate(android, baseTime.Add(2*time.Hour))
	anomaly := a.DetectAnomaly("emp-1", fp)

	assert.False(t, anomaly.IsAnomalous)
	assert.Empty(t, anomaly.Differences)
}

func TestDetectAnomaly_KnownHash(t *testing.T) {
	a := NewFingerprintAnalyzer()
	android := iphone
	android.UserAgent = "Mozilla/5.0 (Linux; Android 14; Pixel 8)"
	android.ScreenResolution = "412x915"
	android.Platform = "Linux armv8l"

	old, _ := a.Generate(android, baseTime)
	a.Record("emp-1", old)
	latest, _ := a.Generate(iphone, baseTime.Add(time.Hour))
	a.Record("emp-1", latest)

	// Replaying an earlier capture matches by hash even though it differs from the latest snapshot
	anomaly := a.DetectAnomaly("emp-1", old)

	assert.False(t, anomaly.IsAnomalous)
}

func TestRecord_RingBufferKeepsMostRecent(t *testing.T) {
	a := NewFingerprintAnalyzer()

	for i := 0; i < fingerprint.HistorySize+5; i++ {
		d := iphone
		d.ScreenResolution = fmt.Sprintf("%dx844", 300+i)
		fp, err := a.Generate(d, baseTime.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		a.Record("emp-1", fp)
	}

	hist := a.History("emp-1")
	require.Len(t, hist, fingerprint.HistorySize)
	assert.Equal(t, "305x844", hist[0].Snapshot.ScreenResolution)
	assert.Equal(t, "314x844", hist[len(hist)-1].Snapshot.ScreenResolution)
	assert.Empty(t, a.History("emp-2"))
}
