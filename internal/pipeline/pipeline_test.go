package pipeline

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/bbref-data/internal/collect"
	"github.com/albapepper/bbref-data/internal/extract"
	"github.com/albapepper/bbref-data/internal/load"
	"github.com/albapepper/bbref-data/internal/registry"
	"github.com/albapepper/bbref-data/internal/store"
	"github.com/albapepper/bbref-data/internal/upload"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const seasonsPage = `
<table id="stats">
  <thead>
    <tr class="over_header"><th colspan="3"></th><th colspan="2">Awards</th><th colspan="4">League Leaders</th></tr>
    <tr><th>Season</th><th>Lg</th><th>Champion</th><th>MVP</th><th>Rookie of the Year</th><th>Points</th><th>Rebounds</th><th>Assists</th><th>Win Shares</th></tr>
  </thead>
  <tbody>
    <tr><th><a href="/leagues/NBA_2024.html">2023-24</a></th><td>NBA</td><td>Boston Celtics</td><td>Nikola Jokić</td><td>Victor Wembanyama</td><td>L. Dončić (2370)</td><td>D. Sabonis (1120)</td><td>T. Haliburton (752)</td><td>N. Jokić (17.0)</td></tr>
    <tr><th><a href="/leagues/ABA_1976.html">1975-76</a></th><td>ABA</td><td>New York Nets</td><td>Julius Erving</td><td>David Thompson</td><td>J. Erving (2462)</td><td>A. Gilmore (1303)</td><td>D. Lattin (571)</td><td>J. Erving (17.7)</td></tr>
  </tbody>
</table>`

func standings(conference, team string) string {
	return `<table><thead><tr><th>` + conference + `</th><th>W</th><th>L</th><th>W/L%</th><th>GB</th><th>PS/G</th><th>PA/G</th><th>SRS</th></tr></thead>` +
		`<tbody><tr><th><a href="/teams/X/2024.html">` + team + `</a></th><td>64</td><td>18</td><td>.780</td><td>&mdash;</td><td>120.6</td><td>109.2</td><td>10.75</td></tr></tbody></table>`
}

var leaguePage = standings("Eastern Conference", "Boston Celtics*") +
	standings("Western Conference", "Oklahoma City Thunder*") +
	standings("Eastern Conference", "Boston Celtics*&nbsp;(1)") +
	standings("Western Conference", "Oklahoma City Thunder*&nbsp;(1)") + `
<table id="per_game-team">
  <thead><tr><th>Rk</th><th>Team</th><th>G</th><th>MP</th><th>PTS</th></tr></thead>
  <tbody>
    <tr><th>1</th><td><a href="/teams/IND/2024.html">Indiana Pacers</a>*</td><td>82</td><td>241.5</td><td>123.3</td></tr>
    <tr><th>2</th><td><a href="/teams/BOS/2024.html">Boston Celtics</a>*</td><td>82</td><td>241.8</td><td>120.6</td></tr>
  </tbody>
</table>`

const teamPage = `
<table id="roster">
  <thead><tr><th>No.</th><th>Player</th><th>Pos</th><th>Ht</th><th>Wt</th><th>Birth Date</th><th>Birth</th><th>Exp</th><th>College</th></tr></thead>
  <tbody>
    <tr><th>8</th><td><a href="/players/b/bryanko01.html">Kobe Bryant</a></td><td>SG</td><td>6-6</td><td>200</td><td>August 23, 1978</td><td>us</td><td>1</td><td></td></tr>
    <tr><th>34</th><td><a href="/players/o/onealsh01.html">Shaquille O'Neal</a></td><td>C</td><td>7-1</td><td>300</td><td>March 6, 1972</td><td>us</td><td>5</td><td>LSU</td></tr>
  </tbody>
</table>
<!--
<table id="advanced">
  <thead>
    <tr class="over_header"><th colspan="4"></th><th colspan="2">Usage</th></tr>
    <tr><th>Rk</th><th>Player</th><th>Age</th><th>G</th><th>MP</th><th>PER</th><th></th></tr>
  </thead>
  <tbody>
    <tr><th>1</th><td><a href="/players/b/bryanko01.html">Kobe Bryant</a></td><td>19</td><td>79</td><td>2056</td><td>18.5</td><td></td></tr>
  </tbody>
</table>
-->
<!--
<table id="salaries2">
  <thead><tr><th>Rk</th><th></th><th>Salary</th></tr></thead>
  <tbody><tr><th>1</th><td><a href="/players/o/onealsh01.html">Shaquille O'Neal</a></td><td>$17,142,000</td></tr></tbody>
</table>
-->`

const playerPage = `
<div id="meta">
  <h1><span>LeBron James</span></h1>
  <p><strong>Position:</strong> Small Forward &#9642; <strong>Shoots:</strong> Right</p>
  <p><strong>Draft:</strong> <a>Cleveland Cavaliers</a>, 1st round (1st pick, 1st overall), <a>2003 NBA Draft</a></p>
  <p><strong>NBA Debut:</strong> <a>October 29, 2003</a></p>
</div>`

func siteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, body) }
	}
	mux.HandleFunc("/leagues/", page(seasonsPage))
	mux.HandleFunc("/leagues/NBA_2024.html", page(leaguePage))
	mux.HandleFunc("/teams/", page(teamPage))
	mux.HandleFunc("/players/", page(playerPage))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type fakeS3 struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, aws.ToString(in.Key))
	return &s3.PutObjectOutput{}, nil
}

// fakeDB records the kinds replaced through load.Table.
type fakeDB struct {
	mu    sync.Mutex
	kinds []string
}

type fakeTx struct {
	pgx.Tx
	db   *fakeDB
	kind string
}

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) { return &fakeTx{db: d}, nil }

func (t *fakeTx) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	t.kind = args[0].(string)
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, src pgx.CopyFromSource) (int64, error) {
	var n int64
	for src.Next() {
		n++
	}
	return n, nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.db.kinds = append(t.db.kinds, t.kind)
	return nil
}

func (t *fakeTx) Rollback(context.Context) error { return nil }

func newPipeline(t *testing.T, srvURL string, s3 *fakeS3, db *fakeDB) (*Pipeline, store.Layout) {
	t.Helper()
	dir := t.TempDir()
	layout := store.Layout{RawDir: filepath.Join(dir, "raw"), ProcessedDir: filepath.Join(dir, "processed")}
	fetcher := collect.NewFetcher(5*time.Second, 0, "bbref-test", discard)
	collector := collect.NewCollector(fetcher, nil, layout, srvURL, false, discard)
	extractor := extract.New(srvURL, 2, discard)

	var uploader *upload.Uploader
	if s3 != nil {
		uploader = upload.New(s3, "bbref", "", discard)
	}
	var beginner load.Beginner
	if db != nil {
		beginner = db
	}
	return New(layout, collector, extractor, uploader, beginner, discard), layout
}

func TestRun(t *testing.T) {
	srv := siteServer(t)
	s3 := &fakeS3{}
	db := &fakeDB{}
	p, layout := newPipeline(t, srv.URL, s3, db)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, res.PagesFetched)
	assert.Equal(t, 0, res.PagesFailed)
	assert.Equal(t, 7, res.TablesWritten)
	assert.Equal(t, int64(res.RowsWritten), res.RowsLoaded)
	assert.Equal(t, 16, res.FilesUploaded)
	assert.Empty(t, res.Errors)

	for _, f := range []string{
		layout.Processed(extract.SeasonsFolder, extract.SeasonsOutput),
		layout.Processed(extract.ConferencesFolder, extract.ConferencesOutput),
		layout.Processed(extract.ConferencesStatsFolder, "per-game-teams-stats.parquet"),
		layout.Processed(extract.TeamsStatsFolder, "rosters.parquet"),
		layout.Processed(extract.TeamsStatsFolder, "salaries.parquet"),
		layout.Processed(extract.PlayersStatsFolder, extract.PlayerStatsOutput),
		layout.Raw(extract.TeamsFolder, "bos-2024.html"),
		layout.Raw(extract.PlayersFolder, "onealsh01.html"),
	} {
		_, err := os.Stat(f)
		assert.NoError(t, err, f)
	}

	teams, err := registry.ReadTeamURLs(layout.Raw(extract.TeamsFolder, extract.TeamURLsOutput))
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/teams/IND/2024.html", srv.URL + "/teams/BOS/2024.html"}, teams[2024])

	sort.Strings(db.kinds)
	assert.Contains(t, db.kinds, "teams_stats/salaries")
	assert.Contains(t, db.kinds, "conferences/conferences")
	assert.Len(t, db.kinds, 7)

	assert.Contains(t, s3.keys, "raw/seasons/seasons.html")
	assert.Contains(t, s3.keys, "processed/teams_stats/rosters.parquet")
}

func TestRunStopsAtFailedStage(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	p, _ := newPipeline(t, srv.URL, nil, nil)

	res, err := p.Run(context.Background())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "extract seasons:"), err.Error())
	assert.Equal(t, 1, res.PagesFailed)
	assert.Len(t, res.Errors, 1)
}

func TestCollectLeaguesNeedsRegistry(t *testing.T) {
	p, _ := newPipeline(t, "http://unused", nil, nil)
	_, err := p.CollectLeagues(context.Background())
	assert.ErrorContains(t, err, "seasons-urls.json")
}

func TestStagesOrder(t *testing.T) {
	p, _ := newPipeline(t, "http://unused", nil, nil)
	var names []string
	for _, s := range p.Stages() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"collect seasons", "extract seasons",
		"collect leagues", "extract conferences", "extract conference stats",
		"extract team urls", "collect teams", "extract team stats",
		"extract player urls", "collect players", "extract player stats",
	}, names)
}

func TestResult(t *testing.T) {
	var r Result
	r.AddCollect(collect.Stats{Fetched: 3, Skipped: 1, Failed: 1, Errors: []string{"404"}})
	r.Add(Result{TablesWritten: 2, RowsWritten: 40, RowsLoaded: 40, FilesUploaded: 2})
	r.AddErrorf("table %s empty", "salaries")

	assert.Equal(t, "fetched=3 skipped=1 failed=1 tables=2 rows=40 loaded=40 uploaded=2 errors=2", r.Summary())
}

