// Package dataset decodes the YAML dataset files served by the memory backend
// and loaded into the persistent stores by `qcache import`.
package dataset

import (
	"io"
	"math"
	"os"
	"time"

	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a dataset.
//
//	calendars:
//	  day: [2024-01-02, 2024-01-03]
//	future_calendars:
//	  day: [2024-01-04]
//	instruments:
//	  csi300:
//	    - {code: SH600000, start: 2020-01-01, end: 2030-12-31}
//	features:
//	  SH600000:
//	    day:
//	      close: {start: 0, values: [2, 3, .nan]}
type File struct {
	Calendars       map[string][]string                        `yaml:"calendars"`
	FutureCalendars map[string][]string                        `yaml:"future_calendars"`
	Instruments     map[string][]SpanDTO                       `yaml:"instruments"`
	Features        map[string]map[string]map[string]ColumnDTO `yaml:"features"`
}

// SpanDTO is one listing period. Empty bounds are open.
type SpanDTO struct {
	Code  string `yaml:"code"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// ColumnDTO is a feature column. Null values decode as NaN.
type ColumnDTO struct {
	Start  int        `yaml:"start"`
	Values []*float64 `yaml:"values"`
}

// ParseTime parses a dataset timestamp, reporting failures as ErrDatasetParseFailed.
func ParseTime(s string) (time.Time, error) {
	t, err := domain.ParseTime(s)
	if err != nil || t.IsZero() {
		return time.Time{}, zerr.With(zerr.Wrap(domain.ErrDatasetParseFailed, "unrecognized timestamp"), "value", s)
	}
	return t, nil
}

// ReadFile decodes the dataset at path.
func ReadFile(path string) (*domain.Dataset, error) {
	// #nosec G304 -- dataset paths come from the settings file
	f, err := os.Open(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStorageOpenFailed, err.Error()), "path", path)
	}
	defer func() { _ = f.Close() }()

	ds, err := Decode(f)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return ds, nil
}

// Decode reads a YAML dataset and converts it to the domain model.
func Decode(r io.Reader) (*domain.Dataset, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, zerr.Wrap(domain.ErrDatasetParseFailed, err.Error())
	}
	return file.toDomain()
}

func (f *File) toDomain() (*domain.Dataset, error) {
	ds := domain.NewDataset()

	if err := convertCalendars(f.Calendars, ds.Calendars); err != nil {
		return nil, err
	}
	if err := convertCalendars(f.FutureCalendars, ds.FutureCalendars); err != nil {
		return nil, err
	}

	for market, spans := range f.Instruments {
		out := make([]domain.InstrumentSpan, 0, len(spans))
		for _, s := range spans {
			span, err := s.toDomain()
			if err != nil {
				return nil, zerr.With(err, "market", market)
			}
			out = append(out, span)
		}
		ds.Instruments[market] = out
	}

	for instrument, byFreq := range f.Features {
		if err := domain.ValidateName("instrument", instrument); err != nil {
			return nil, err
		}
		for freqName, fields := range byFreq {
			freq, err := domain.ParseFreq(freqName)
			if err != nil {
				return nil, err
			}
			for field, col := range fields {
				id := domain.ColumnID{Instrument: instrument, Field: field, Freq: freq.String()}
				ds.Columns[id] = col.toDomain()
			}
		}
	}
	return ds, nil
}

func convertCalendars(in map[string][]string, out map[string][]time.Time) error {
	for freqName, days := range in {
		freq, err := domain.ParseFreq(freqName)
		if err != nil {
			return err
		}
		times := make([]time.Time, 0, len(days))
		for _, day := range days {
			t, err := ParseTime(day)
			if err != nil {
				return zerr.With(err, "freq", freqName)
			}
			times = append(times, t)
		}
		out[freq.String()] = times
	}
	return nil
}

func (s SpanDTO) toDomain() (domain.InstrumentSpan, error) {
	if err := domain.ValidateName("instrument", s.Code); err != nil {
		return domain.InstrumentSpan{}, err
	}
	span := domain.InstrumentSpan{Code: s.Code}
	var err error
	if s.Start != "" {
		if span.Start, err = ParseTime(s.Start); err != nil {
			return domain.InstrumentSpan{}, err
		}
	}
	if s.End != "" {
		if span.End, err = ParseTime(s.End); err != nil {
			return domain.InstrumentSpan{}, err
		}
	}
	return span, nil
}

func (c ColumnDTO) toDomain() domain.Column {
	values := make(domain.Series, len(c.Values))
	for i, v := range c.Values {
		if v == nil {
			values[i] = math.NaN()
			continue
		}
		values[i] = *v
	}
	return domain.Column{Start: c.Start, Values: values}
}
