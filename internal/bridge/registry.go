package bridge

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/sirupsen/logrus"
)

var commandName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Handler executes one invocation. A nil result means success with no payload.
type Handler func(inv *Invocation) (any, error)

// Invocation is what a Handler receives.
type Invocation struct {
	ID      string
	Command string
	Args    json.RawMessage
	Log     *logrus.Entry
}

// Command is a named backend operation the frontend may invoke.
type Command struct {
	Name        string
	Description string
	// Version is matched against Request.Requires. Nil means 1.0.0.
	Version *semver.Version
	// Schema is an optional JSON Schema the arguments must satisfy.
	Schema  string
	Handler Handler
}

type entry struct {
	cmd    Command
	schema *jsonschema.Schema
}

// Registry is the table of commands the bridge dispatches by name.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*entry)}
}

// Register adds cmd to the table. Names must be snake_case and unique.
func (r *Registry) Register(cmd Command) error {
	if !commandName.MatchString(cmd.Name) {
		return fmt.Errorf("invalid command name %q", cmd.Name)
	}
	if cmd.Handler == nil {
		return fmt.Errorf("command %s has no handler", cmd.Name)
	}
	if cmd.Version == nil {
		cmd.Version = semver.MustParse("1.0.0")
	}

	e := &entry{cmd: cmd}
	if strings.TrimSpace(cmd.Schema) != "" {
		schema, err := compileSchema(cmd.Name, cmd.Schema)
		if err != nil {
			return fmt.Errorf("command %s: %w", cmd.Name, err)
		}
		e.schema = schema
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("command %s is already registered", cmd.Name)
	}
	r.commands[cmd.Name] = e
	return nil
}

// MustRegister is Register for static command tables; it panics on error.
func (r *Registry) MustRegister(cmds ...Command) {
	for _, cmd := range cmds {
		if err := r.Register(cmd); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.commands[name]
	if !ok {
		return Command{}, false
	}
	return e.cmd, true
}

// Commands returns every registered command sorted by name.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmds := make([]Command, 0, len(r.commands))
	for _, e := range r.commands {
		cmds = append(cmds, e.cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// resolve finds the command for req and checks the version constraint and
// argument schema.
func (r *Registry) resolve(req Request) (Command, error) {
	r.mu.RLock()
	e, ok := r.commands[req.Command]
	r.mu.RUnlock()
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, req.Command)
	}

	if req.Requires != "" {
		c, err := semver.NewConstraint(req.Requires)
		if err != nil {
			return Command{}, fmt.Errorf("invalid version constraint %q: %w", req.Requires, err)
		}
		if !c.Check(e.cmd.Version) {
			return Command{}, fmt.Errorf("%w: %s is %s, caller requires %s", ErrIncompatible, e.cmd.Name, e.cmd.Version, req.Requires)
		}
	}

	if e.schema != nil {
		if err := validateArgs(e.schema, req.Args); err != nil {
			return Command{}, err
		}
	}
	return e.cmd, nil
}
