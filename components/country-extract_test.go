package components

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/relloyd/country-metrics/artifact"
	"github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/logger"
)

const twoCountriesJson = `[
 {"name": {"common": "Testland", "official": "Republic of Testland"}, "capital": ["Testopolis"], "region": "Europe", "population": 100, "area": 10},
 {"name": {"common": "Emptystan"}, "capital": [], "population": 50, "area": 0}
]`

func newExtractConfig(store artifact.Store, endpoint string) *CountryExtractConfig {
	return &CountryExtractConfig{
		Log:            logger.NewNullLogger(),
		Name:           "extract",
		Endpoint:       endpoint,
		Timeout:        2 * time.Second,
		UserAgent:      "country-metrics-test",
		Store:          store,
		OutputLocation: constants.ArtifactRawDefault,
	}
}

func TestNewCountryExtract(t *testing.T) {
	g := NewWithT(t)
	var gotQuery, gotAgent, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("fields")
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(twoCountriesJson))
	}))
	defer srv.Close()
	store := artifact.NewMemoryStore()

	res, err := NewCountryExtract(context.Background(), newExtractConfig(store, srv.URL+"/v3.1/all"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res).To(Equal(ExtractResult{Rows: 2, AbsentNames: 0, AbsentCapitals: 1}))
	g.Expect(gotQuery).To(Equal("name,capital,region,population,area"))
	g.Expect(gotAgent).To(Equal("country-metrics-test"))
	g.Expect(gotAccept).To(Equal("application/json"))

	tbl, err := store.Read(context.Background(), constants.ArtifactRawDefault)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(tbl.Header).To(Equal(constants.CountryFields))
	g.Expect(tbl.Rows).To(Equal([][]string{
		{"Testland", "Testopolis", "Europe", "100", "10"},
		{"Emptystan", "", "", "50", "0"},
	}))
}

func TestNewCountryExtract_Defaults(t *testing.T) {
	g := NewWithT(t)
	body := `[
	 {"capital": "Solo City", "region": "Oceania"},
	 {"name": {"common": "Bigland"}, "population": 1.5e9, "area": 12.25},
	 {"name": null, "capital": null, "population": null}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()
	store := artifact.NewMemoryStore()
	res, err := NewCountryExtract(context.Background(), newExtractConfig(store, srv.URL))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.AbsentNames).To(Equal(2))
	g.Expect(res.AbsentCapitals).To(Equal(2))
	tbl, _ := store.Read(context.Background(), constants.ArtifactRawDefault)
	g.Expect(tbl.Rows).To(Equal([][]string{
		{"", "Solo City", "Oceania", "0", "0"},
		{"Bigland", "", "", "1500000000", "12.25"},
		{"", "", "", "0", "0"},
	}))
}

func TestNewCountryExtract_Failures(t *testing.T) {
	longBody := strings.Repeat("x", 4096)
	cases := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(longBody))
		}, http.StatusInternalServerError},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}, http.StatusNotFound},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"name":`))
		}, 0},
		{"object not array", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": 400, "message": "Bad Request"}`))
		}, 0},
		{"null", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`null`))
		}, 0},
		{"population out of range", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"name":{"common":"Big"},"population":1e20,"area":-5}]`))
		}, 0},
		{"trailing data", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[] garbage`))
		}, 0},
		{"second array", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[][]`))
		}, 0},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
			_, _ = w.Write([]byte(`[]`))
		}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewWithT(t)
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			store := artifact.NewMemoryStore()
			cfg := newExtractConfig(store, srv.URL)
			cfg.Timeout = 100 * time.Millisecond
			_, err := NewCountryExtract(context.Background(), cfg)
			var te *TransportError
			g.Expect(errors.As(err, &te)).To(BeTrue(), "expected TransportError, got %v", err)
			g.Expect(te.StatusCode).To(Equal(tc.wantStatus))
			g.Expect(len(te.Body)).To(BeNumerically("<=", constants.SourceErrorBodyMaxBytes))
			// No artifact is written.
			_, err = store.Read(context.Background(), constants.ArtifactRawDefault)
			g.Expect(errors.Is(err, artifact.ErrArtifactNotFound)).To(BeTrue())
		})
	}
}

func TestNewCountryExtract_BadEndpoint(t *testing.T) {
	g := NewWithT(t)
	_, err := NewCountryExtract(context.Background(), newExtractConfig(artifact.NewMemoryStore(), "ftp://example.com/all"))
	var te *TransportError
	g.Expect(errors.As(err, &te)).To(BeTrue())
}

func TestProjectedUrl(t *testing.T) {
	g := NewWithT(t)
	u, err := projectedUrl("https://restcountries.com/v3.1/all?fields=name&x=1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(u).To(Equal("https://restcountries.com/v3.1/all?fields=name%2Ccapital%2Cregion%2Cpopulation%2Carea&x=1"))
}

func TestNumberToInt64(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"1500000000", 1500000000, false},
		{"12.9", 12, false},
		{"1.5e9", 1500000000, false},
		{"9223372036854775807", 9223372036854775807, false},
		{"-3", -3, false},
		{"1e20", 0, true},
		{"-1e20", 0, true},
		{"9223372036854775808", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			g := NewWithT(t)
			got, err := numberToInt64(json.Number(tc.in))
			if tc.wantErr {
				g.Expect(err).To(HaveOccurred())
				return
			}
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(got).To(Equal(tc.want))
		})
	}
}
