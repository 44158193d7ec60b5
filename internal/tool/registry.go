package tool

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type Registry struct {
	log   *logrus.Logger
	tools map[string]Tool
}

func NewRegistry(log *logrus.Logger) *Registry {
	return &Registry{
		log:   log,
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Dispatch runs the named tool and always comes back with user-facing
// text. Tool errors and panics are contained here; they never propagate
// into the conversation loop.
func (r *Registry) Dispatch(ctx context.Context, name string, args ToolArgs, tc ToolContext) (result string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": tc.RequestID,
				"tool":       name,
				"panic":      fmt.Sprint(rec),
			}).Error("Tool panicked during execution")
			result = "Something went wrong running that tool."
		}
	}()

	t, ok := r.tools[name]
	if !ok {
		return fmt.Sprintf("I don't have a tool called %q.", name)
	}

	out, err := t.Execute(ctx, args, tc)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": tc.RequestID,
			"tool":       name,
			"error":      err.Error(),
		}).Warn("Tool execution failed")
		return fmt.Sprintf("I couldn't finish that: %s", err.Error())
	}

	return out
}
