package actions

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/relloyd/country-metrics/components"
	"github.com/relloyd/country-metrics/config"
	c "github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/pipe"
	"github.com/relloyd/country-metrics/stats"
	_ "modernc.org/sqlite"
)

const twoCountriesJson = `[
 {"name": {"common": "Testland"}, "capital": ["Testopolis"], "population": 100, "area": 10},
 {"name": {"common": "Emptystan"}, "capital": [], "population": 50, "area": 0}
]`

func newMockSource(t *testing.T, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newTestPipeline wires a file artifact backend and a SQLite store under a temp dir.
func newTestPipeline(t *testing.T, endpoint string) *CountryPipeline {
	g := NewWithT(t)
	dir := t.TempDir()
	cfg := config.NewPipeline()
	g.Expect(cfg.Apply(map[string]interface{}{
		"source.endpoint":       endpoint,
		"source.timeoutSeconds": "2",
		"store.type":            c.ConnectionTypeSqlite,
		"store.path":            filepath.Join(dir, "metrics.db"),
		"artifacts.raw":         filepath.Join(dir, "countries_temp.csv"),
		"artifacts.final":       filepath.Join(dir, "countries_final.csv"),
	})).To(Succeed())
	p, err := NewCountryPipeline(logger.NewNullLogger(), *cfg)
	g.Expect(err).NotTo(HaveOccurred())
	p.StatsOptions = []func(*stats.RunStatsManager){stats.SetStatsDumpFrequency(0)}
	return p
}

type destinationRow struct {
	Name       string
	Capital    string
	Population int64
	Area       float64
	Density    sql.NullFloat64
}

func readDestination(t *testing.T, p *CountryPipeline) []destinationRow {
	g := NewWithT(t)
	db, err := sql.Open("sqlite", p.Config.Store.Path)
	g.Expect(err).NotTo(HaveOccurred())
	defer db.Close()
	rows, err := db.Query("select name, capital, population, area, density from " + p.Config.Store.Table + " order by id")
	g.Expect(err).NotTo(HaveOccurred())
	defer rows.Close()
	retval := make([]destinationRow, 0)
	for rows.Next() {
		var r destinationRow
		g.Expect(rows.Scan(&r.Name, &r.Capital, &r.Population, &r.Area, &r.Density)).To(Succeed())
		retval = append(retval, r)
	}
	return retval
}

func TestCountryPipeline_EndToEnd(t *testing.T) {
	g := NewWithT(t)
	p := newTestPipeline(t, newMockSource(t, twoCountriesJson).URL)

	g.Expect(p.Run(context.Background())).To(Succeed())
	expected := []destinationRow{
		{Name: "Testland", Capital: "Testopolis", Population: 100, Area: 10, Density: sql.NullFloat64{Float64: 10, Valid: true}},
		{Name: "Emptystan", Capital: "No Capital", Population: 50, Area: 0},
	}
	g.Expect(readDestination(t, p)).To(Equal(expected))
	g.Expect(p.Config.Artifacts.Final).To(BeAnExistingFile())

	// A second full run leaves the same rows.
	g.Expect(p.Run(context.Background())).To(Succeed())
	g.Expect(readDestination(t, p)).To(Equal(expected))
}

func TestCountryPipeline_StagesIndependently(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	log := logger.NewNullLogger()
	p := newTestPipeline(t, newMockSource(t, twoCountriesJson).URL)

	res, err := p.Cleanup(ctx, log)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Deleted).To(BeEmpty())
	g.Expect(res.Missing).To(HaveLen(2))

	ex, err := p.Extract(ctx, log)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ex.Rows).To(Equal(2))
	tr, err := p.Transform(ctx, log)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(tr.DefaultedCapitals).To(Equal(1))
	ld, err := p.Load(ctx, log)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ld).To(Equal(components.LoadResult{Rows: 2, Table: c.TargetTableDefault}))

	res, err = p.Cleanup(ctx, log)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Deleted).To(ConsistOf(p.Config.Artifacts.Raw, p.Config.Artifacts.Final))
	_, err = os.Stat(p.Config.Artifacts.Raw)
	g.Expect(os.IsNotExist(err)).To(BeTrue())
}

func TestCountryPipeline_SourceFailureStopsRun(t *testing.T) {
	g := NewWithT(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	p := newTestPipeline(t, srv.URL)

	err := p.Run(context.Background())
	var se *pipe.StepError
	g.Expect(errors.As(err, &se)).To(BeTrue())
	g.Expect(se.Step).To(Equal(c.StepNameExtract))
	var te *components.TransportError
	g.Expect(errors.As(err, &te)).To(BeTrue())
	g.Expect(te.StatusCode).To(Equal(http.StatusServiceUnavailable))
	// No raw artifact and the destination was never created.
	g.Expect(p.Config.Artifacts.Raw).NotTo(BeAnExistingFile())
	g.Expect(p.Config.Store.Path).NotTo(BeAnExistingFile())
}

func TestCountryPipeline_Step(t *testing.T) {
	g := NewWithT(t)
	p := newTestPipeline(t, "http://localhost")
	steps := p.Steps()
	g.Expect(steps).To(HaveLen(4))
	for idx, s := range steps {
		g.Expect(s.Name).To(Equal(c.StepNames[idx]))
	}
	_, err := p.Step("publish")
	g.Expect(err).To(MatchError(ContainSubstring("unknown stage")))
	_, err = p.NewRun(c.StepNameLoad, "nope")
	g.Expect(err).To(HaveOccurred())
	_, err = p.NewRun(c.StepNameExtract, c.StepNameTransform, c.StepNameExtract)
	g.Expect(err).To(MatchError(ContainSubstring("more than once")))
}

func TestCountryPipeline_NewRunUsesPipelineOrder(t *testing.T) {
	g := NewWithT(t)
	p := newTestPipeline(t, newMockSource(t, twoCountriesJson).URL)
	r, err := p.NewRun(c.StepNameTransform, c.StepNameExtract)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(r.Execute(context.Background())).To(Succeed())
	st := r.GetStats()
	g.Expect(st).To(HaveLen(2))
	g.Expect(st[0].StepName).To(Equal(c.StepNameExtract))
	g.Expect(st[1].StepName).To(Equal(c.StepNameTransform))
	g.Expect(st[1].TotalRowsProcessed).To(Equal(int64(2)))
	g.Expect(p.Config.Artifacts.Final).To(BeAnExistingFile())
}

func TestNewCountryPipeline_InvalidConfig(t *testing.T) {
	g := NewWithT(t)
	cfg := config.NewPipeline()
	cfg.Store.Table = ""
	_, err := NewCountryPipeline(logger.NewNullLogger(), *cfg)
	g.Expect(err).To(HaveOccurred())
	cfg = config.NewPipeline()
	cfg.Artifacts.Backend = "ftp"
	_, err = NewCountryPipeline(logger.NewNullLogger(), *cfg)
	g.Expect(err).To(HaveOccurred())
}
