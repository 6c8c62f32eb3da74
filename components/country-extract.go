package components

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/country-metrics/artifact"
	c "github.com/relloyd/country-metrics/constants"
	h "github.com/relloyd/country-metrics/helper"
	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/stream"
)

type CountryExtractConfig struct {
	Log            logger.Logger
	Name           string
	HttpClient     *http.Client // optional; a client with Timeout is created if nil
	Endpoint       string
	Timeout        time.Duration
	UserAgent      string
	Store          artifact.Store
	OutputLocation string
}

type ExtractResult struct {
	Rows           int `json:"rows"`
	AbsentNames    int `json:"absentNames"`
	AbsentCapitals int `json:"absentCapitals"`
}

// sourceCountry is the subset of a source entry that we project.
type sourceCountry struct {
	Name *struct {
		Common *string `json:"common"`
	} `json:"name"`
	Capital    capitalField `json:"capital"`
	Region     *string      `json:"region"`
	Population *json.Number `json:"population"`
	Area       *json.Number `json:"area"`
}

// capitalField accepts either a list of capitals or a single string.
type capitalField []string

func (f *capitalField) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*f = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*f = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.Errorf("capital must be a list of strings or a string, got %s", b)
	}
	*f = []string{s}
	return nil
}

// NewCountryExtract fetches the source with the fixed field projection and writes the raw artifact.
// Nothing is written unless the whole response was fetched and decoded.
func NewCountryExtract(ctx context.Context, cfg *CountryExtractConfig) (ExtractResult, error) {
	result := ExtractResult{}
	cfg.Log.Info(cfg.Name, " is running")
	reqUrl, err := projectedUrl(cfg.Endpoint)
	if err != nil {
		return result, &TransportError{URL: cfg.Endpoint, Err: err}
	}
	countries, err := fetchCountries(ctx, cfg, reqUrl)
	if err != nil {
		return result, err
	}
	t := stream.NewTable(c.CountryFields)
	for i, sc := range countries {
		rec, err := sc.toCountryRecord()
		if err != nil {
			return result, &TransportError{URL: reqUrl, Err: errors.Wrapf(err, "record %v", i+1)}
		}
		if rec.Name == nil {
			result.AbsentNames++
		}
		if rec.Capital == nil {
			result.AbsentCapitals++
		}
		t.AppendRow(rec.Row())
	}
	result.Rows = t.Len()
	if result.AbsentNames > 0 {
		cfg.Log.Warn(cfg.Name, " found ", result.AbsentNames, " records without a name; passing them through")
	}
	if err := cfg.Store.Write(ctx, cfg.OutputLocation, t); err != nil {
		return result, errors.Wrapf(err, "%v unable to write artifact %v", cfg.Name, cfg.OutputLocation)
	}
	cfg.Log.Info(cfg.Name, " wrote ", result.Rows, " rows to ", cfg.OutputLocation)
	return result, nil
}

func projectedUrl(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Wrap(err, "invalid source endpoint")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.Errorf("invalid source endpoint scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set("fields", c.SourceFieldProjection)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func fetchCountries(ctx context.Context, cfg *CountryExtractConfig, reqUrl string) ([]sourceCountry, error) {
	client := cfg.HttpClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl, nil)
	if err != nil {
		return nil, &TransportError{URL: reqUrl, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	cfg.Log.Debug(cfg.Name, " GET ", reqUrl)
	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: reqUrl, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, c.SourceErrorBodyMaxBytes))
		return nil, &TransportError{
			URL:        reqUrl,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        errors.Errorf("unexpected status %v", resp.Status),
		}
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var countries []sourceCountry
	if err := dec.Decode(&countries); err != nil {
		return nil, &TransportError{URL: reqUrl, Err: errors.Wrap(err, "unable to decode response as a JSON array of countries")}
	}
	if countries == nil { // a JSON null
		return nil, &TransportError{URL: reqUrl, Err: errors.New("response was not a JSON array")}
	}
	if _, err := dec.Token(); err != io.EOF { // anything after the array
		return nil, &TransportError{URL: reqUrl, Err: errors.New("unexpected data after the JSON array")}
	}
	return countries, nil
}

// toCountryRecord applies the defaulting rules: missing population and area become 0.
// Empty strings are treated as absent since the artifact cannot tell them apart.
// A population outside the int64 range is an error.
func (sc sourceCountry) toCountryRecord() (stream.CountryRecord, error) {
	rec := stream.CountryRecord{Region: h.EmptyToNilString(h.StringPtrOrEmpty(sc.Region))}
	if sc.Name != nil {
		rec.Name = h.EmptyToNilString(h.StringPtrOrEmpty(sc.Name.Common))
	}
	if len(sc.Capital) > 0 {
		rec.Capital = h.EmptyToNilString(sc.Capital[0])
	}
	if sc.Population != nil {
		pop, err := numberToInt64(*sc.Population)
		if err != nil {
			return rec, errors.Wrap(err, "population")
		}
		rec.Population = pop
	}
	if sc.Area != nil {
		if a, err := sc.Area.Float64(); err == nil {
			rec.Area = a
		}
	}
	return rec, nil
}

// numberToInt64 truncates non-integral values.
func numberToInt64(n json.Number) (int64, error) {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Errorf("%v is not a finite number", n)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, errors.Errorf("%v is out of range", n)
	}
	return int64(f), nil
}
