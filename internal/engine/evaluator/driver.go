// Package evaluator computes expression trees over instruments, memoising every
// subtree in the feature cache and deduplicating concurrent work.
package evaluator

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
	"go.trai.ch/qcache/internal/engine/cache"
	"go.trai.ch/qcache/internal/engine/calendar"
	"go.trai.ch/qcache/internal/engine/expr"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Driver evaluates expressions against a feature backend.
//
// Results handed out by the Driver are shared with the cache and must not be modified.
type Driver struct {
	registry    *cache.Registry
	backend     ports.FeatureBackend
	calendar    *calendar.Index
	instruments ports.InstrumentSource
	tracer      ports.Tracer

	features    *cache.Group[domain.Series]
	lists       *cache.Group[domain.InstrumentList]
	loads       *semaphore.Weighted
	parallelism int
}

// NewDriver creates a Driver. parallelism bounds concurrent backend loads, the
// children of one operator evaluated at once and the number of instruments
// evaluated at once; values below one mean one.
func NewDriver(
	registry *cache.Registry,
	backend ports.FeatureBackend,
	index *calendar.Index,
	instruments ports.InstrumentSource,
	tracer ports.Tracer,
	parallelism int,
) *Driver {
	parallelism = max(parallelism, 1)
	return &Driver{
		registry:    registry,
		backend:     backend,
		calendar:    index,
		instruments: instruments,
		tracer:      tracer,
		features:    cache.NewGroup[domain.Series](),
		lists:       cache.NewGroup[domain.InstrumentList](),
		loads:       semaphore.NewWeighted(int64(parallelism)),
		parallelism: parallelism,
	}
}

// Evaluate returns the values of node for instrument over the inclusive calendar index range [start, end].
func (d *Driver) Evaluate(
	ctx context.Context,
	instrument string,
	node expr.Node,
	start, end int,
	freq domain.Freq,
) (domain.Series, error) {
	if start < 0 || start > end {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidRange, "cannot evaluate"), "start", start), "end", end)
	}

	switch n := node.(type) {
	case *expr.Constant:
		return constant(n.Value(), end-start+1), nil
	case *expr.CrossInstrument:
		return d.Evaluate(ctx, n.Instrument(), n.Child(), start, end, freq)
	}

	key := domain.FeatureKey(instrument, node.String(), start, end, freq)
	features := d.registry.Feature()
	if v, ok := features.Get(key); ok {
		return v.(domain.Series), nil
	}

	series, _, err := d.features.Do(ctx, key, func(ctx context.Context) (domain.Series, error) {
		if v, ok := features.Get(key); ok {
			return v.(domain.Series), nil
		}

		series, err := d.compute(ctx, instrument, node, start, end, freq)
		if err != nil {
			return nil, err
		}
		features.Put(key, series)
		return series, nil
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

func (d *Driver) compute(
	ctx context.Context,
	instrument string,
	node expr.Node,
	start, end int,
	freq domain.Freq,
) (domain.Series, error) {
	switch n := node.(type) {
	case *expr.Leaf:
		return d.load(ctx, instrument, n, start, end, freq)
	case expr.Operator:
		return d.apply(ctx, instrument, n, start, end, freq)
	}
	return nil, zerr.With(zerr.Wrap(domain.ErrUnknownOperator, "cannot evaluate node"), "expression", node.String())
}

func (d *Driver) load(
	ctx context.Context,
	instrument string,
	leaf *expr.Leaf,
	start, end int,
	freq domain.Freq,
) (domain.Series, error) {
	if err := d.loads.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer d.loads.Release(1)

	ctx, span := d.tracer.Start(ctx, "feature.load",
		ports.WithAttribute("instrument", instrument),
		ports.WithAttribute("field", leaf.String()),
	)
	defer span.End()

	series, err := d.backend.LoadLeaf(ctx, instrument, leaf.String(), start, end, freq)
	if err != nil {
		span.RecordError(err)
		msg := "failed to load feature"
		if errors.Is(err, domain.ErrDataNotFound) {
			msg = "feature not found"
		}
		return nil, zerr.With(zerr.With(zerr.Wrap(err, msg), "instrument", instrument), "field", leaf.String())
	}

	if want := end - start + 1; len(series) != want {
		err := zerr.With(zerr.With(zerr.With(zerr.Wrap(domain.ErrAlignment, "backend returned a series of the wrong length"),
			"field", leaf.String()), "want", want), "got", len(series))
		span.RecordError(err)
		return nil, err
	}
	return series, nil
}

// apply evaluates the children of op over the range widened by its window,
// combines them and trims the result back to [start, end].
func (d *Driver) apply(
	ctx context.Context,
	instrument string,
	op expr.Operator,
	start, end int,
	freq domain.Freq,
) (domain.Series, error) {
	lo := max(start-op.Window(), 0)
	children := op.Children()
	inputs := make([]domain.Series, len(children))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.parallelism)
	for i, child := range children {
		g.Go(func() error {
			v, err := d.Evaluate(gctx, instrument, child, lo, end, freq)
			if err != nil {
				return err
			}
			inputs[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	span := end - lo + 1
	for i, in := range inputs {
		if len(in) != span {
			return nil, zerr.With(zerr.With(zerr.With(zerr.Wrap(domain.ErrAlignment, "child series are misaligned"),
				"expression", children[i].String()), "want", span), "got", len(in))
		}
	}

	out, err := op.Apply(inputs)
	if err != nil {
		return nil, zerr.With(err, "expression", op.String())
	}
	if len(out) != span {
		return nil, zerr.With(zerr.Wrap(domain.ErrAlignment, "operator changed the series length"), "expression", op.String())
	}
	return slices.Clone(out[start-lo:]), nil
}

func constant(v float64, n int) domain.Series {
	out := make(domain.Series, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Frame is an evaluated series together with its trading timestamps.
type Frame struct {
	Times  []time.Time
	Values domain.Series
}

// EvaluateTimes snaps [start, end] to the trading calendar of freq and evaluates node over it.
func (d *Driver) EvaluateTimes(
	ctx context.Context,
	instrument string,
	node expr.Node,
	start, end time.Time,
	freq domain.Freq,
) (Frame, error) {
	cal, err := d.calendar.Calendar(ctx, freq, false)
	if err != nil {
		return Frame{}, err
	}
	if cal.Len() == 0 {
		return Frame{Times: []time.Time{}, Values: domain.Series{}}, nil
	}
	if start.IsZero() {
		start = cal.At(0)
	}
	if end.IsZero() {
		end = cal.At(cal.Len() - 1)
	}

	loc, err := d.calendar.LocateIndex(ctx, start, end, freq, false)
	if err != nil {
		return Frame{}, err
	}
	if loc.StartIndex > loc.EndIndex {
		return Frame{Times: []time.Time{}, Values: domain.Series{}}, nil
	}

	values, err := d.Evaluate(ctx, instrument, node, loc.StartIndex, loc.EndIndex, freq)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Times: cal.Times(loc.StartIndex, loc.EndIndex), Values: values}, nil
}

// EvaluateAll evaluates node for every instrument, at most parallelism at a time.
// Results are returned in the order of instruments.
func (d *Driver) EvaluateAll(
	ctx context.Context,
	instruments []string,
	node expr.Node,
	start, end time.Time,
	freq domain.Freq,
) ([]Frame, error) {
	frames := make([]Frame, len(instruments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.parallelism)
	for i, instrument := range instruments {
		g.Go(func() error {
			f, err := d.EvaluateTimes(gctx, instrument, node, start, end, freq)
			if err != nil {
				return zerr.With(err, "instrument", instrument)
			}
			frames[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}

// Instruments resolves the instruments of market that pass every filter of pipe.
func (d *Driver) Instruments(ctx context.Context, market string, pipe domain.FilterPipe) (domain.InstrumentList, error) {
	if err := domain.ValidateName("market", market); err != nil {
		return nil, err
	}

	key := domain.InstrumentKey(market, pipe)
	lists := d.registry.Instrument()
	if v, ok := lists.Get(key); ok {
		return v.(domain.InstrumentList), nil
	}

	list, _, err := d.lists.Do(ctx, key, func(ctx context.Context) (domain.InstrumentList, error) {
		if v, ok := lists.Get(key); ok {
			return v.(domain.InstrumentList), nil
		}

		ctx, span := d.tracer.Start(ctx, "instruments.list", ports.WithAttribute("market", market))
		defer span.End()

		spans, err := d.instruments.ListInstruments(ctx, market)
		if err != nil {
			span.RecordError(err)
			return nil, zerr.With(zerr.Wrap(err, "failed to list instruments"), "market", market)
		}

		list := pipe.Apply(spans)
		span.SetAttribute("instruments", len(list))
		lists.Put(key, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CalendarRange returns the trading timestamps of freq within [start, end].
func (d *Driver) CalendarRange(ctx context.Context, start, end time.Time, freq domain.Freq, future bool) ([]time.Time, error) {
	return d.calendar.Range(ctx, start, end, freq, future)
}

// ClearCaches empties every cache namespace.
func (d *Driver) ClearCaches() {
	d.registry.ClearAll()
}

// Stats reports the state of every cache namespace.
func (d *Driver) Stats() map[domain.Namespace]cache.Stats {
	return d.registry.Stats()
}
