package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<div id="meta"><h1><span>LeBron James</span></h1></div>
<table id="standings">
  <thead><tr><th>Team</th><th>W</th></tr></thead>
  <tbody><tr><td>Boston Celtics*</td><td>64</td></tr></tbody>
</table>
<!--
<table id="advanced-team">
  <thead>
    <tr class="over_header"><th colspan="2"></th><th colspan="2">Offense Four Factors</th><th colspan="2">Defense Four Factors</th></tr>
    <tr><th>Rk</th><th>Team</th><th>eFG%</th><th>TOV%</th><th>eFG%</th><th></th></tr>
  </thead>
  <tbody>
    <tr><th>1</th><td>Boston Celtics</td><td>.566</td><td>10.7</td><td>.519</td><td></td></tr>
    <tr class="thead"><th>Rk</th><th>Team</th><th>eFG%</th><th>TOV%</th><th>eFG%</th><th></th></tr>
    <tr><th>2</th><td>Denver Nuggets</td><td>.560</td><td>12.0</td><td>.535</td><td></td></tr>
  </tbody>
  <tfoot><tr><th></th><td>League Average</td><td>.546</td><td>12.1</td><td>.546</td><td></td></tr></tfoot>
</table>
-->
<table><tr><td>Rk</td><td>Player</td></tr><tr><td>1</td><td>Tim&nbsp;Duncan</td></tr></table>
</body></html>`

// TestCommentedTableNeedsUncommenting verifies that a table shipped inside a
// comment is only visible once the delimiters are stripped.
func TestCommentedTableNeedsUncommenting(t *testing.T) {
	doc, err := Parse(page)
	require.NoError(t, err)
	_, ok := doc.FindByID("advanced-team")
	assert.False(t, ok)
	assert.Equal(t, 2, doc.TableCount())

	doc, err = ParseUncommented(page)
	require.NoError(t, err)
	_, ok = doc.FindByID("advanced-team")
	assert.True(t, ok)
	assert.Equal(t, 3, doc.TableCount())
}

func TestFindByIDAbsent(t *testing.T) {
	doc, err := ParseUncommented(page)
	require.NoError(t, err)
	frag, ok := doc.FindByID("shooting-team")
	assert.False(t, ok)
	assert.Nil(t, frag)
}

// TestFrameTwoRowHeader verifies the second header row supplies labels,
// repeated labels are suffixed, blank labels are placeholders, repeated
// header rows are skipped and footer rows are kept.
func TestFrameTwoRowHeader(t *testing.T) {
	doc, err := ParseUncommented(page)
	require.NoError(t, err)
	frag, ok := doc.FindByID("advanced-team")
	require.True(t, ok)

	f := frag.Frame(2)

	assert.Equal(t, []string{"Rk", "Team", "eFG%", "TOV%", "eFG%.1", "Unnamed: 5"}, f.Columns)
	require.Equal(t, 3, f.Len())
	assert.Equal(t, "Denver Nuggets", f.Value(1, "Team"))
	assert.Nil(t, f.Value(2, "Rk"))
	assert.Equal(t, "League Average", f.Value(2, "Team"))
	assert.Nil(t, f.Value(0, "Unnamed: 5"))
}

// TestFrameSkipsGroupingRowsInBody verifies that grouping header rows
// repeated inside the body are not read as records.
func TestFrameSkipsGroupingRowsInBody(t *testing.T) {
	doc, err := Parse(`<table id="shooting">
  <thead>
    <tr class="over_header"><th colspan="2">G1</th><th>G2</th></tr>
    <tr><th>Rk</th><th>Team</th><th>FG%</th></tr>
  </thead>
  <tbody>
    <tr><th>1</th><td>A</td><td>.5</td></tr>
    <tr class="over_header thead"><th colspan="2">G1</th><th>G2</th></tr>
    <tr class="thead"><th>Rk</th><th>Team</th><th>FG%</th></tr>
    <tr><th>2</th><td>B</td><td>.4</td></tr>
  </tbody>
</table>`)
	require.NoError(t, err)
	frag, ok := doc.FindByID("shooting")
	require.True(t, ok)

	f := frag.Frame(2)

	assert.Equal(t, []string{"Rk", "Team", "FG%"}, f.Columns)
	require.Equal(t, 2, f.Len())
	assert.Equal(t, "1", f.Value(0, "Rk"))
	assert.Equal(t, "2", f.Value(1, "Rk"))
	assert.Equal(t, "B", f.Value(1, "Team"))
}

// TestFrameDepthClamped verifies a depth larger than the header block uses
// its last row.
func TestFrameDepthClamped(t *testing.T) {
	doc, err := Parse(page)
	require.NoError(t, err)
	frag, ok := doc.FindByID("standings")
	require.True(t, ok)

	f := frag.Frame(2)
	assert.Equal(t, []string{"Team", "W"}, f.Columns)
	assert.Equal(t, 1, f.Len())
}

func TestFramePositionalWithoutThead(t *testing.T) {
	doc, err := Parse(page)
	require.NoError(t, err)
	frag, ok := doc.Table(1)
	require.True(t, ok)

	f := frag.Frame(1)
	assert.Equal(t, []string{"Rk", "Player"}, f.Columns)
	assert.Equal(t, "Tim Duncan", f.Value(0, "Player"))

	_, ok = doc.Table(5)
	assert.False(t, ok)
}

func TestColspanExpandsBodyCells(t *testing.T) {
	doc, err := Parse(`<table>
<thead><tr><th>Team</th><th>W</th><th>L</th></tr></thead>
<tbody>
<tr class="thead"><th colspan="3">Eastern Division</th></tr>
<tr><td>Syracuse Nationals*</td><td>35</td><td>37</td></tr>
</tbody></table>`)
	require.NoError(t, err)
	frag, ok := doc.Table(0)
	require.True(t, ok)

	f := frag.Frame(1)
	require.Equal(t, 2, f.Len())
	assert.Equal(t, "Eastern Division", f.Value(0, "Team"))
	assert.Equal(t, "Eastern Division", f.Value(0, "L"))
}

func TestFindAllAndText(t *testing.T) {
	doc, err := Parse(page)
	require.NoError(t, err)

	spans := doc.FindAll("div#meta h1 span")
	require.Len(t, spans, 1)
	assert.Equal(t, "LeBron James", spans[0].Text())
	assert.Contains(t, doc.Text(), "LeBron James")

	first, ok := doc.First("div#meta")
	require.True(t, ok)
	assert.Len(t, first.FindAll("span"), 1)
	id, ok := first.Attr("id")
	assert.True(t, ok)
	assert.Equal(t, "meta", id)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nba-2024.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o644))

	doc, err := LoadFile(path, true)
	require.NoError(t, err)
	_, ok := doc.FindByID("advanced-team")
	assert.True(t, ok)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.html"), false)
	assert.Error(t, err)
}
