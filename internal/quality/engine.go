package quality

import "github.com/scrypster/folio/pkg/types"

// Logger is the reporting sink an Engine writes run summaries to.
// *log.Logger, *logrus.Logger and *logrus.Entry all satisfy it.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Engine wraps the pure quality functions with an injected logger. The zero
// value is not usable; construct with NewEngine.
type Engine struct {
	log Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the sink for run summaries. A nil logger disables logging.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine creates an Engine. Without options it logs nothing.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: nopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate runs Validate and logs a one-line summary.
func (e *Engine) Validate(s types.Snapshot) types.Report {
	r := Validate(s)
	e.log.Printf("quality: valid=%t entities=%d duplicates=%d broken_refs=%d unused=%d",
		r.IsValid, r.Stats.TotalEntities, r.Stats.Duplicates, r.Stats.BrokenReferences, r.Stats.UnusedEntities)
	return r
}

// Deduplicate runs Deduplicate and logs how many entities were dropped.
func (e *Engine) Deduplicate(s types.Snapshot) types.Snapshot {
	out := Deduplicate(s)
	if dropped := s.Len() - out.Len(); dropped > 0 {
		e.log.Printf("quality: deduplicate dropped %d entities", dropped)
	}
	return out
}

// CheckAdmin runs CheckAdmin and logs the resulting score.
func (e *Engine) CheckAdmin(projects []types.AdminProject, skills []types.AdminSkill) types.AdminReport {
	r := CheckAdmin(projects, skills)
	e.log.Printf("quality: admin check duplicates=%d score=%d", r.Stats.Duplicates, r.Score)
	return r
}
