// Package replay drives a store from a YAML script of user actions, for
// demos and for reproducing a session without a terminal.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jask/jasktodo/internal/store"
)

var ErrInvalidStep = errors.New("invalid step")

// Script is the decoded YAML document.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is one user action. Exactly one of Create, Update and Delete is set.
// Update and Delete name a task by the alias given to an earlier Create.
type Step struct {
	Create *string `yaml:"create,omitempty"`
	As     string  `yaml:"as,omitempty"`
	Update string  `yaml:"update,omitempty"`
	Delete string  `yaml:"delete,omitempty"`
	Text   *string `yaml:"text,omitempty"`
}

// Parse decodes and validates a script.
func Parse(r io.Reader) (Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Script{}, nil
		}
		return Script{}, fmt.Errorf("decode script: %w", err)
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return Script{}, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return s, nil
}

func (s Step) validate() error {
	n := 0
	if s.Create != nil {
		n++
	}
	if s.Update != "" {
		n++
	}
	if s.Delete != "" {
		n++
	}
	switch {
	case n != 1:
		return fmt.Errorf("%w: want exactly one of create, update, delete", ErrInvalidStep)
	case s.Update != "" && s.Text == nil:
		return fmt.Errorf("%w: update %q needs text", ErrInvalidStep, s.Update)
	case s.Create == nil && s.As != "":
		return fmt.Errorf("%w: as is only valid on create", ErrInvalidStep)
	case s.Update == "" && s.Text != nil:
		return fmt.Errorf("%w: text is only valid on update", ErrInvalidStep)
	}
	return nil
}

// Result reports what a run did.
type Result struct {
	Created  int
	Updated  int
	Deleted  int
	Missed   int
	Snapshot store.Snapshot
}

// Run applies the script to st in order. An alias that was never created, or
// whose task is gone, resolves to nothing and the step is a no-op.
func Run(ctx context.Context, st *store.Store, s Script) (Result, error) {
	aliases := map[string]store.ID{}
	var res Result
	for i, step := range s.Steps {
		switch {
		case step.Create != nil:
			t, err := st.Create(ctx, *step.Create)
			if err != nil {
				return res, fmt.Errorf("step %d: %w", i+1, err)
			}
			res.Created++
			if step.As != "" {
				aliases[step.As] = t.ID
			}
		case step.Update != "":
			found, err := st.Update(ctx, aliases[step.Update], *step.Text)
			if err != nil {
				return res, fmt.Errorf("step %d: %w", i+1, err)
			}
			res.count(found, &res.Updated)
		case step.Delete != "":
			found, err := st.Delete(ctx, aliases[step.Delete])
			if err != nil {
				return res, fmt.Errorf("step %d: %w", i+1, err)
			}
			res.count(found, &res.Deleted)
		}
	}
	snap, err := st.List(ctx)
	if err != nil {
		return res, err
	}
	res.Snapshot = snap
	return res, nil
}

func (r *Result) count(found bool, n *int) {
	if found {
		*n++
	} else {
		r.Missed++
	}
}

const (
	FormatText = "text"
	FormatYAML = "yaml"
)

type taskOut struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// Write prints the snapshot as tab-separated lines or as a YAML list.
func Write(w io.Writer, snap store.Snapshot, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		for _, t := range snap.Tasks() {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", t.ID, t.Text); err != nil {
				return err
			}
		}
		return nil
	case FormatYAML:
		out := make([]taskOut, 0, snap.Len())
		for _, t := range snap.Tasks() {
			out = append(out, taskOut{ID: string(t.ID), Text: t.Text})
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string][]taskOut{"tasks": out}); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
