package fact

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/haskel/gpuprobe/internal/shell"
)

// DefaultTimeout bounds a source when neither it nor the resolver sets one.
const DefaultTimeout = 10 * time.Second

type output struct {
	text string
	miss Miss
	ok   bool
}

// Resolver walks source chains. It remembers command output for its own
// lifetime so one invocation of a tool can feed several facts; build a new
// Resolver per report.
type Resolver struct {
	host    shell.Host
	logger  *slog.Logger
	timeout time.Duration
	memo    map[string]output
}

func NewResolver(host shell.Host, logger *slog.Logger, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		host:    host,
		logger:  logger,
		timeout: timeout,
		memo:    make(map[string]output),
	}
}

// Host returns the host the resolver runs sources against.
func (r *Resolver) Host() shell.Host {
	return r.host
}

// Resolve tries each source in order and returns the first present result;
// later sources are not touched. When the chain is exhausted the Fact is
// absent, carrying the most informative miss reason seen. It never returns
// an error.
func (r *Resolver) Resolve(ctx context.Context, name string, chain Chain) Fact {
	miss := NotAttempted
	for _, src := range chain {
		start := time.Now()

		var f Fact
		if out := r.fetch(ctx, src); out.ok {
			f = Extract(name, out.text, src.rule)
		} else {
			f = Absent(name, out.miss)
		}

		if f.Present() {
			r.logger.Debug("fact resolved",
				"fact", name,
				"source", src.Name,
				"elapsed", time.Since(start),
			)
			return f.withSource(src.Name)
		}

		r.logger.Debug("source skipped",
			"fact", name,
			"source", src.Name,
			"reason", f.Miss().String(),
			"elapsed", time.Since(start),
		)
		if f.Miss().worse(miss) {
			miss = f.Miss()
		}
	}
	return Absent(name, miss)
}

func (r *Resolver) fetch(ctx context.Context, src Source) output {
	switch src.kind {
	case sourceCommand:
		return r.runCommand(ctx, src)
	case sourceFile:
		if !r.host.Exists(src.path) {
			return output{miss: ToolUnavailable}
		}
		data, err := r.host.ReadFile(src.path)
		if err != nil {
			return output{miss: SourceFailed}
		}
		return nonEmpty(string(data))
	case sourceEnv:
		v := r.host.Getenv(src.env)
		if v == "" {
			return output{miss: ToolUnavailable}
		}
		return nonEmpty(v)
	case sourceFunc:
		ctx, cancel := context.WithTimeout(ctx, r.timeoutFor(src))
		defer cancel()
		text, err := src.fn(ctx)
		if err != nil {
			return output{miss: classify(err)}
		}
		return nonEmpty(text)
	}
	return output{}
}

func (r *Resolver) runCommand(ctx context.Context, src Source) output {
	tool := src.Tool()
	if !shell.Probe(r.host, tool) {
		return output{miss: ToolUnavailable}
	}
	key := strings.Join(src.args, "\x00")
	if out, ok := r.memo[key]; ok {
		return out
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeoutFor(src))
	defer cancel()

	var out output
	data, err := r.host.Run(runCtx, tool, src.args[1:]...)
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		out = output{miss: TimeoutExceeded}
	case err != nil:
		out = output{miss: classify(err)}
	default:
		out = nonEmpty(string(data))
	}
	r.memo[key] = out
	return out
}

func (r *Resolver) timeoutFor(src Source) time.Duration {
	if src.timeout > 0 {
		return src.timeout
	}
	return r.timeout
}

func classify(err error) Miss {
	switch {
	case errors.Is(err, ErrNoValue):
		return ParseMiss
	case errors.Is(err, shell.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return TimeoutExceeded
	case errors.Is(err, shell.ErrToolUnavailable):
		return ToolUnavailable
	default:
		return SourceFailed
	}
}

func nonEmpty(text string) output {
	if strings.TrimSpace(text) == "" {
		return output{miss: ParseMiss}
	}
	return output{text: text, ok: true}
}
