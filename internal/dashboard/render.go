package dashboard

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/pfrederiksen/cricscore/internal/config"
	"github.com/pfrederiksen/cricscore/internal/match"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(
	template.New("dashboard").Funcs(template.FuncMap{
		"text":  match.Text,
		"clock": clock,
	}).ParseFS(templateFS, "templates/*.html"),
)

// view is what the templates render
type view struct {
	Matches   []*match.Match
	FetchedAt time.Time
	Cached    bool
	Err       error

	// Updated is false until the first refresh has completed
	Updated bool
	Empty   bool

	IntervalSeconds int
	MinInterval     int
	MaxInterval     int
	IntervalStep    int
}

func newView(snap match.Snapshot, interval time.Duration) view {
	updated := !snap.FetchedAt.IsZero() || snap.Err != nil
	return view{
		Matches:         snap.Matches,
		FetchedAt:       snap.FetchedAt,
		Cached:          snap.Cached,
		Err:             snap.Err,
		Updated:         updated,
		Empty:           updated && snap.Err == nil && len(snap.Matches) == 0,
		IntervalSeconds: int(interval / time.Second),
		MinInterval:     config.MinIntervalSeconds,
		MaxInterval:     config.MaxIntervalSeconds,
		IntervalStep:    config.IntervalStepSeconds,
	}
}

// renderPage renders the full page
func renderPage(v view) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "index.html", v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderLive renders the fragment pushed over the websocket
func renderLive(v view) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "live", v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clock(t time.Time) string {
	return t.Local().Format("15:04:05 MST")
}
