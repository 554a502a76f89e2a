package classify

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"actionScope/internal/decoder"
	"actionScope/internal/model"
	"actionScope/internal/numeric"
	"actionScope/internal/registry"
	"actionScope/internal/resolver"
)

// Classifier turns call traces into actions. It holds only read-only state and is
// safe for concurrent use.
type Classifier struct {
	registry *registry.Registry
	resolver *resolver.Resolver
	priority []Rule
	workers  int
	logger   *zap.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithPriority replaces the registry probe order.
func WithPriority(rules []Rule) Option {
	return func(c *Classifier) {
		c.priority = append([]Rule(nil), rules...)
	}
}

// WithWorkers bounds batch parallelism. Values below 1 mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Classifier) {
		c.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// New builds a classifier. res may be nil, in which case every trace goes through the
// registry probe.
func New(reg *registry.Registry, res *resolver.Resolver, opts ...Option) (*Classifier, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	c := &Classifier{
		registry: reg,
		resolver: res,
		priority: DefaultPriority,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers < 1 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	for _, rule := range c.priority {
		if _, ok := reg.Interface(rule.Interface); !ok {
			return nil, fmt.Errorf("rule %s: unknown interface %s", rule.Name, rule.Interface)
		}
		for _, sig := range rule.Signatures {
			if !HasMapping(sig) {
				return nil, fmt.Errorf("rule %s: no action mapping for %s", rule.Name, sig)
			}
		}
	}
	return c, nil
}

// ClassifyBatch classifies traces in parallel. The result has the same length and order
// as traces. It fails only if ctx is done before every trace was classified.
func (c *Classifier) ClassifyBatch(ctx context.Context, traces []model.CallTrace) ([]model.Action, error) {
	out := make([]model.Action, len(traces))
	if len(traces) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range traces {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = c.Classify(traces[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Classify maps one trace to exactly one action.
func (c *Classifier) Classify(trace model.CallTrace) model.Action {
	action := model.Action{
		TxHash:       trace.TxHash,
		BlockNumber:  trace.BlockNumber,
		TxPosition:   trace.TxPosition,
		TraceAddress: append([]uint64{}, trace.TraceAddress...),
	}

	if !trace.IsCall() {
		return unclassified(action, trace, model.ReasonNotACall, trace.Type)
	}
	// The proxy's own frame already yields the action; the delegated frame would repeat
	// it with the implementation as token.
	if trace.IsDelegated() {
		return unclassified(action, trace, model.ReasonNotACall, trace.CallType)
	}
	sel, ok := registry.SelectorFromPayload(trace.Input)
	if !ok {
		return unclassified(action, trace, model.ReasonShortPayload, fmt.Sprintf("payload length %d", len(trace.Input)))
	}

	if c.resolver != nil {
		if iface, err := c.resolver.Resolve(trace.To); err == nil {
			return c.classifyResolved(action, trace, sel, iface)
		} else if !errors.Is(err, resolver.ErrNotRegistered) {
			c.logger.Warn("resolve contract", zap.String("address", trace.To.Hex()), zap.Error(err))
		}
	}
	return c.classifyProbe(action, trace, sel)
}

// classifyResolved decodes only against the contract's own ABI document.
func (c *Classifier) classifyResolved(action model.Action, trace model.CallTrace, sel registry.Selector, iface *registry.Interface) model.Action {
	candidates := iface.SchemasFor(sel)
	if len(candidates) == 0 {
		return unclassified(action, trace, model.ReasonUnknownSelector, fmt.Sprintf("%s not in %s", sel.Hex(), iface.Name))
	}
	for _, schema := range candidates {
		result, overflow := c.attempt(action, &trace, schema)
		if overflow != nil {
			return unclassified(action, trace, model.ReasonNumericOverflow, overflow.Error())
		}
		if result != nil {
			return *result
		}
	}
	return unclassified(action, trace, model.ReasonNoMatch, fmt.Sprintf("%s in %s", sel.Hex(), iface.Name))
}

// classifyProbe walks the priority rules over the registry candidates for sel.
func (c *Classifier) classifyProbe(action model.Action, trace model.CallTrace, sel registry.Selector) model.Action {
	candidates := c.registry.SchemasFor(sel)
	if len(candidates) == 0 {
		return unclassified(action, trace, model.ReasonUnknownSelector, sel.Hex())
	}
	for _, rule := range c.priority {
		for _, schema := range candidates {
			if schema.Interface != rule.Interface || !rule.allows(schema.Signature) {
				continue
			}
			result, overflow := c.attempt(action, &trace, schema)
			if overflow != nil {
				return unclassified(action, trace, model.ReasonNumericOverflow, overflow.Error())
			}
			if result != nil {
				return *result
			}
		}
	}
	return unclassified(action, trace, model.ReasonNoMatch, sel.Hex())
}

// attempt decodes and maps one candidate. A nil result with a nil error is a miss.
func (c *Classifier) attempt(action model.Action, trace *model.CallTrace, schema registry.FunctionSchema) (*model.Action, error) {
	call, err := decoder.Decode(trace.Input, schema)
	if err != nil {
		if errors.Is(err, numeric.ErrNumericOverflow) {
			c.logger.Debug("numeric overflow", zap.String("tx", trace.TxHash.Hex()), zap.String("function", schema.Signature), zap.Error(err))
			return nil, err
		}
		return nil, nil
	}

	mapFn, ok := mappers[call.Signature]
	if !ok {
		return nil, nil
	}
	if err := mapFn(call, trace, &action); err != nil {
		if errors.Is(err, numeric.ErrNumericOverflow) {
			return nil, err
		}
		return nil, nil
	}
	action.Protocol = schema.Interface
	action.Function = schema.Name
	return &action, nil
}

func unclassified(action model.Action, trace model.CallTrace, reason, detail string) model.Action {
	action.Kind = model.KindUnclassified
	action.Unclassified = &model.Unclassified{
		Reason: reason,
		Detail: detail,
		Trace:  trace.Clone(),
	}
	return action
}
