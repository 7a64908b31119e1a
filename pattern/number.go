package pattern

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"runtime"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Step weights for the numeric search. Higher weights favour shorter
// patterns over fewer explored nodes.
const (
	WeightFast       = 100
	WeightFaster     = 10
	WeightUnweighted = 0
	WeightShorter    = 10000
)

// numberPrefix is the fixed prefix of every positive numeric literal
// pattern; negative literals use negativePrefix.
const (
	numberPrefix   = "aqaa"
	negativePrefix = "dedd"
)

// overshootPenalty is added to the cost of any value above the target.
const overshootPenalty = 1000

var (
	// ErrSearchExhausted is returned when the frontier empties without
	// reaching the target.
	ErrSearchExhausted = errors.New("pattern: numeric search exhausted")
	// ErrNegativeTarget is returned by Synthesize for targets below zero.
	ErrNegativeTarget = errors.New("pattern: negative synthesis target")
	// ErrUnknownMode is returned by WeightForMode.
	ErrUnknownMode = errors.New("pattern: unknown synthesis mode")
)

// WeightForMode maps a mode name (fast, faster, unweighted, shorter) to
// its step weight. An empty name selects shorter.
func WeightForMode(mode string) (float64, error) {
	switch mode {
	case "fast":
		return WeightFast, nil
	case "faster":
		return WeightFaster, nil
	case "unweighted":
		return WeightUnweighted, nil
	case "shorter", "":
		return WeightShorter, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// SynthOptions configures a Synthesizer.
type SynthOptions struct {
	// Weight multiplies the step count in the search cost.
	Weight float64
	// YieldEvery is the iteration interval at which the search logs
	// progress, yields the processor and checks for cancellation.
	YieldEvery int
	// SlowThreshold is the duration above which a solved search is logged.
	SlowThreshold time.Duration
	// Logger receives progress lines. Nil discards them.
	Logger *log.Logger
}

// DefaultSynthOptions returns the options used when none are given.
func DefaultSynthOptions() SynthOptions {
	return SynthOptions{
		Weight:        WeightShorter,
		YieldEvery:    100,
		SlowThreshold: 100 * time.Millisecond,
	}
}

// Synthesizer finds instruction strings whose numeric interpretation
// equals a target, memoizing results per target. It is safe for
// concurrent use; concurrent requests for one target share a search.
type Synthesizer struct {
	opts   SynthOptions
	logger *log.Logger

	mu      sync.Mutex
	cache   map[int64]string
	flights map[int64]*flight
	group   singleflight.Group
}

// flight is the context shared by every caller waiting on one target. It
// is cancelled when the last waiter leaves.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(opts SynthOptions) *Synthesizer {
	if opts.YieldEvery <= 0 {
		opts.YieldEvery = 100
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "[SYNTH] ", log.LstdFlags)
	}
	return &Synthesizer{
		opts:    opts,
		logger:  logger,
		cache:   make(map[int64]string),
		flights: make(map[int64]*flight),
	}
}

// Number returns the numeric-literal pattern for n. Non-negative values
// start south-east with the positive prefix; negative values start
// north-east with the negative prefix and synthesize the magnitude.
func (s *Synthesizer) Number(ctx context.Context, n int64) (Pattern, error) {
	if n < 0 {
		if n == math.MinInt64 {
			return Pattern{}, fmt.Errorf("pattern: number %d out of range", n)
		}
		body, err := s.Synthesize(ctx, -n)
		if err != nil {
			return Pattern{}, err
		}
		return New(NorthEast, negativePrefix+body), nil
	}
	body, err := s.Synthesize(ctx, n)
	if err != nil {
		return Pattern{}, err
	}
	return New(SouthEast, numberPrefix+body), nil
}

// Cached returns a memoized result without searching.
func (s *Synthesizer) Cached(target int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache[target]
	return v, ok
}

// CacheLen returns the number of memoized targets.
func (s *Synthesizer) CacheLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

// Synthesize returns an instruction string over {q,w,e,a,d} that, applied
// to zero with q:+5 w:+1 e:+10 a:×2 d:÷2, yields target. The string
// never makes "aqaa"+result self-overlap. Results are memoized.
//
// Concurrent callers for one target share a search. A caller whose ctx
// ends stops waiting without failing the others; the search itself is
// cancelled once no caller is waiting for it.
func (s *Synthesizer) Synthesize(ctx context.Context, target int64) (string, error) {
	if target < 0 {
		return "", fmt.Errorf("%w: %d", ErrNegativeTarget, target)
	}
	if v, ok := s.Cached(target); ok {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fl := s.join(ctx, target)
	defer s.leave(target, fl)

	key := strconv.FormatInt(target, 10)
	for {
		ch := s.group.DoChan(key, func() (interface{}, error) {
			if v, ok := s.Cached(target); ok {
				return v, nil
			}
			path, err := s.search(fl.ctx, target)
			if err != nil {
				return "", err
			}
			s.mu.Lock()
			s.cache[target] = path
			s.mu.Unlock()
			return path, nil
		})

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				// a search abandoned by earlier callers; start over
				if isContextErr(res.Err) && ctx.Err() == nil {
					continue
				}
				return "", res.Err
			}
			return res.Val.(string), nil
		}
	}
}

// join registers a waiter for target. The flight context carries ctx's
// values but not its cancellation.
func (s *Synthesizer) join(ctx context.Context, target int64) *flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	fl, ok := s.flights[target]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		fl = &flight{ctx: fctx, cancel: cancel}
		s.flights[target] = fl
	}
	fl.waiters++
	return fl
}

func (s *Synthesizer) leave(target int64, fl *flight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fl.waiters--
	if fl.waiters > 0 {
		return
	}
	fl.cancel()
	if s.flights[target] == fl {
		delete(s.flights, target)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ============================================================
// Search
// ============================================================

type searchNode struct {
	cost  float64
	step  int
	value float64
	path  string
	seq   int
}

// frontier is a min-heap ordered by cost, then insertion order.
type frontier []*searchNode

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x interface{}) { *f = append(*f, x.(*searchNode)) }

func (f *frontier) Pop() interface{} {
	old := *f
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*f = old[:len(old)-1]
	return n
}

func (s *Synthesizer) cost(target float64, step int, value float64) float64 {
	c := float64(step)*s.opts.Weight + math.Abs(value-target)
	if value > target {
		c += overshootPenalty
	}
	return c
}

func (s *Synthesizer) search(ctx context.Context, target int64) (string, error) {
	t := float64(target)
	started := time.Now()

	f := &frontier{}
	seq := 0
	push := func(step int, value float64, path string) {
		heap.Push(f, &searchNode{
			cost:  s.cost(t, step, value),
			step:  step,
			value: value,
			path:  path,
			seq:   seq,
		})
		seq++
	}
	push(1, 0, "")

	visited := make(map[float64]struct{})
	iterations := 0
	for f.Len() > 0 {
		iterations++
		if iterations%s.opts.YieldEvery == 0 {
			best := (*f)[0]
			s.logger.Printf("target %d: %d steps, %d frontier nodes, best %v (cost %v, step %d)",
				target, iterations, f.Len(), best.value, best.cost, best.step)
			runtime.Gosched()
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}

		node := heap.Pop(f).(*searchNode)
		if node.value == t {
			if elapsed := time.Since(started); s.opts.SlowThreshold > 0 && elapsed > s.opts.SlowThreshold {
				s.logger.Printf("target %d: solved in %d steps, took %s", target, iterations, elapsed)
			}
			return node.path, nil
		}
		if _, seen := visited[node.value]; seen {
			continue
		}
		visited[node.value] = struct{}{}

		for _, next := range successors(node, t) {
			if HasOverlap(numberPrefix + next.path) {
				continue
			}
			push(next.step, next.value, next.path)
		}
	}
	return "", fmt.Errorf("%w: target %d after %d steps", ErrSearchExhausted, target, iterations)
}

// successors expands a node in fixed order: q, w, e while below target,
// then a (below) or d (at or above) once past the first step.
func successors(n *searchNode, target float64) []searchNode {
	out := make([]searchNode, 0, 4)
	step := n.step + 1
	if n.value < target {
		out = append(out,
			searchNode{step: step, value: n.value + 5, path: n.path + "q"},
			searchNode{step: step, value: n.value + 1, path: n.path + "w"},
			searchNode{step: step, value: n.value + 10, path: n.path + "e"},
		)
	}
	if n.step > 1 {
		if n.value < target {
			out = append(out, searchNode{step: step, value: n.value * 2, path: n.path + "a"})
		} else {
			out = append(out, searchNode{step: step, value: n.value / 2, path: n.path + "d"})
		}
	}
	return out
}
