package app

import (
	"strconv"
	"time"

	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/engine/evaluator"
	"go.trai.ch/qcache/internal/ui/output"
)

// evalTable lays frames out as one row per timestamp and one column per instrument.
// Every frame of one evaluation spans the same calendar window.
func evalTable(instruments []string, frames []evaluator.Frame) output.Table {
	t := output.Table{Headers: append([]string{"datetime"}, instruments...)}
	if len(frames) == 0 {
		return t
	}

	for i, ts := range frames[0].Times {
		row := make([]string, 0, len(frames)+1)
		row = append(row, domain.FormatTime(ts))
		for _, f := range frames {
			row = append(row, formatValue(f.Values[i]))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func calendarTable(times []time.Time) output.Table {
	t := output.Table{Headers: []string{"datetime"}}
	for _, ts := range times {
		t.Rows = append(t.Rows, []string{domain.FormatTime(ts)})
	}
	return t
}

func instrumentsTable(list domain.InstrumentList) output.Table {
	t := output.Table{Headers: []string{"instrument"}}
	for _, code := range list {
		t.Rows = append(t.Rows, []string{code})
	}
	return t
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
