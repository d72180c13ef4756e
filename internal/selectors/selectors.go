// Package selectors partitions a command list into "selected now" and
// "not selected now" using the always-rule and VCS-diff matching,
// composed in a fixed pipeline (spec.md §4.3, §9 "closed set of
// variants over open polymorphism").
package selectors

import (
	"github.com/fnug-dev/fnug/internal/config"
	"github.com/fnug-dev/fnug/internal/git"
)

// Selector splits commands into (selected, remaining), preserving the
// input order of each output slice.
type Selector interface {
	Select(commands []*config.Command) (selected, remaining []*config.Command, err error)
}

// Pipeline runs a fixed sequence of selectors, each operating on what
// the previous stage left unselected, concatenating every stage's
// selected output in stage order (spec.md §4.3).
type Pipeline struct {
	stages []Selector
}

// NewPipeline builds the standard always-then-git pipeline, sharing a
// single VCS scanner across the lifetime of the process so repeated
// selection passes benefit from its cache.
func NewPipeline(scanner *git.Scanner) *Pipeline {
	return &Pipeline{stages: []Selector{
		AlwaysSelector{},
		&GitSelector{Scanner: scanner},
	}}
}

// Select runs every stage in order and returns the concatenated
// selection.
func (p *Pipeline) Select(commands []*config.Command) ([]*config.Command, error) {
	var selected []*config.Command
	remaining := commands
	for _, stage := range p.stages {
		sel, rest, err := stage.Select(remaining)
		if err != nil {
			return nil, err
		}
		selected = append(selected, sel...)
		remaining = rest
	}
	return selected, nil
}
