package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/engine/evaluator"
	"go.trai.ch/qcache/internal/engine/expr"
	"go.trai.ch/zerr"
)

// FrameResponse is one instrument's evaluated series. NaN values are null.
type FrameResponse struct {
	Instrument string     `json:"instrument"`
	Times      []string   `json:"times"`
	Values     []*float64 `json:"values"`
}

// EvalResponse is the body of GET /v1/eval.
type EvalResponse struct {
	Expression string          `json:"expression"`
	Freq       string          `json:"freq"`
	Results    []FrameResponse `json:"results"`
}

// CalendarResponse is the body of GET /v1/calendar.
type CalendarResponse struct {
	Freq  string   `json:"freq"`
	Times []string `json:"times"`
}

// InstrumentsResponse is the body of GET /v1/instruments.
type InstrumentsResponse struct {
	Market      string   `json:"market"`
	Instruments []string `json:"instruments"`
}

// CacheStats is the state of one cache namespace.
type CacheStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
	Size      int64 `json:"size"`
}

// StatusResponse is the body of GET /v1/status.
type StatusResponse struct {
	Uptime        string                `json:"uptime"`
	IdleRemaining string                `json:"idle_remaining"`
	Caches        map[string]CacheStats `json:"caches"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewEvalResponse pairs each instrument with its frame. frames[i] belongs to instruments[i].
func NewEvalResponse(node expr.Node, freq domain.Freq, instruments []string, frames []evaluator.Frame) EvalResponse {
	resp := EvalResponse{
		Expression: node.String(),
		Freq:       freq.String(),
		Results:    make([]FrameResponse, len(frames)),
	}
	for i, f := range frames {
		resp.Results[i] = FrameResponse{
			Instrument: instruments[i],
			Times:      formatTimes(f.Times),
			Values:     nullable(f.Values),
		}
	}
	return resp
}

// NewCalendarResponse renders a calendar range.
func NewCalendarResponse(freq domain.Freq, times []time.Time) CalendarResponse {
	return CalendarResponse{Freq: freq.String(), Times: formatTimes(times)}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// eval handles GET /v1/eval?expr=...&instrument=...&market=...&start=...&end=...&freq=...
// Instruments are taken from repeated instrument parameters, or resolved from market.
func (s *Server) eval(c *gin.Context) {
	node, err := expr.Parse(c.Query("expr"))
	if err != nil {
		s.fail(c, err)
		return
	}
	freq, start, end, err := rangeParams(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	instruments := c.QueryArray("instrument")
	if len(instruments) == 0 {
		market := c.DefaultQuery("market", "all")
		list, err := s.engine.Instruments(c.Request.Context(), market, domain.WindowPipe(start, end))
		if err != nil {
			s.fail(c, err)
			return
		}
		instruments = list
	}

	frames, err := s.engine.EvaluateAll(c.Request.Context(), instruments, node, start, end, freq)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, NewEvalResponse(node, freq, instruments, frames))
}

func (s *Server) calendar(c *gin.Context) {
	freq, start, end, err := rangeParams(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	future, err := strconv.ParseBool(c.DefaultQuery("future", "false"))
	if err != nil {
		s.fail(c, zerr.With(zerr.Wrap(domain.ErrInvalidSetting, "future must be a boolean"), "future", c.Query("future")))
		return
	}

	times, err := s.engine.CalendarRange(c.Request.Context(), start, end, freq, future)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCalendarResponse(freq, times))
}

func (s *Server) instruments(c *gin.Context) {
	_, start, end, err := rangeParams(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	market := c.DefaultQuery("market", "all")
	list, err := s.engine.Instruments(c.Request.Context(), market, domain.WindowPipe(start, end))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, InstrumentsResponse{Market: market, Instruments: list})
}

func (s *Server) status(c *gin.Context) {
	stats := s.engine.Stats()
	caches := make(map[string]CacheStats, len(stats))
	for ns, st := range stats {
		caches[string(ns)] = CacheStats(st)
	}
	c.JSON(http.StatusOK, StatusResponse{
		Uptime:        s.lifecycle.Uptime().Round(time.Second).String(),
		IdleRemaining: s.lifecycle.IdleRemaining().Round(time.Second).String(),
		Caches:        caches,
	})
}

func (s *Server) clear(c *gin.Context) {
	s.engine.ClearCaches()
	c.Status(http.StatusNoContent)
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error(err)
	}
	c.AbortWithStatusJSON(code, ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrDataNotFound), errors.Is(err, domain.ErrUnknownNamespace):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrParseExpression),
		errors.Is(err, domain.ErrUnknownOperator),
		errors.Is(err, domain.ErrInvalidWindow),
		errors.Is(err, domain.ErrInvalidFreq),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidTime),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrInvalidSetting):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func rangeParams(c *gin.Context) (domain.Freq, time.Time, time.Time, error) {
	freq, err := domain.ParseFreq(c.DefaultQuery("freq", domain.FreqDay))
	if err != nil {
		return domain.Freq{}, time.Time{}, time.Time{}, err
	}
	start, err := domain.ParseTime(c.Query("start"))
	if err != nil {
		return domain.Freq{}, time.Time{}, time.Time{}, err
	}
	end, err := domain.ParseTime(c.Query("end"))
	if err != nil {
		return domain.Freq{}, time.Time{}, time.Time{}, err
	}
	return freq, start, end, nil
}

func formatTimes(times []time.Time) []string {
	out := make([]string, len(times))
	for i, t := range times {
		out[i] = domain.FormatTime(t)
	}
	return out
}

func nullable(values domain.Series) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[i] = &v
		}
	}
	return out
}
