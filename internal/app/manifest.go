package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hyperifyio/rewind/internal/extract"
)

// manifestYear records how one topic-year ended.
type manifestYear struct {
	Year    int    `json:"year"`
	Outcome string `json:"outcome"`
	Records int    `json:"records"`
	Heading string `json:"heading,omitempty"`
	Tables  int    `json:"tables,omitempty"`
	Error   string `json:"error,omitempty"`
}

type manifestTopic struct {
	Name    string         `json:"name"`
	URL     string         `json:"url"`
	Records int            `json:"records"`
	Years   []manifestYear `json:"years"`
}

// manifestOutput is one file written by the run.
type manifestOutput struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Bytes  int64  `json:"bytes"`
}

// manifest captures what a run read and wrote so it can be reproduced and
// audited.
type manifest struct {
	RunID      string           `json:"run_id"`
	Version    string           `json:"version"`
	Commit     string           `json:"commit"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	From       int              `json:"from"`
	To         int              `json:"to"`
	Offline    bool             `json:"offline"`
	Topics     []manifestTopic  `json:"topics"`
	Outputs    []manifestOutput `json:"outputs"`
}

func newManifest(cfg Config, started time.Time) *manifest {
	return &manifest{
		RunID:     uuid.NewString(),
		Version:   BuildVersion,
		Commit:    BuildCommit,
		StartedAt: started.UTC(),
		From:      cfg.Years.From,
		To:        cfg.Years.To,
		Offline:   cfg.Offline,
	}
}

// addResult records per-year outcomes of one topic.
func (m *manifest) addResult(url string, res extract.Result) {
	t := manifestTopic{Name: res.Topic, URL: url, Records: len(res.Records)}
	for _, y := range res.Years {
		e := manifestYear{Year: y.Year, Outcome: y.Outcome(), Records: len(y.Records), Heading: y.Heading, Tables: y.Tables}
		if y.Err != nil {
			e.Error = y.Err.Error()
		}
		t.Years = append(t.Years, e)
	}
	m.Topics = append(m.Topics, t)
}

// addOutputs digests each file. Paths are stored relative to base when
// possible.
func (m *manifest) addOutputs(base string, paths ...string) error {
	for _, p := range paths {
		sum, n, err := fileSHA256(p)
		if err != nil {
			return err
		}
		rel := p
		if r, err := filepath.Rel(base, p); err == nil {
			rel = filepath.ToSlash(r)
		}
		m.Outputs = append(m.Outputs, manifestOutput{Path: rel, SHA256: sum, Bytes: n})
	}
	return nil
}

// write stores the manifest as indented JSON at path.
func (m *manifest) write(path string, finished time.Time) error {
	m.FinishedAt = finished.UTC()
	sort.SliceStable(m.Outputs, func(i, j int) bool { return m.Outputs[i].Path < m.Outputs[j].Path })
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// fileSHA256 returns the lowercase hex SHA-256 of a file and its size.
func fileSHA256(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
